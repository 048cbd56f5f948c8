package codec

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// printAreaName is the reserved defined name holding a sheet's print area.
const printAreaName = "_xlnm.Print_Area"

// setPrintArea defines the print area of sheetName as the used range of rows.
// Sheets without data get no print area.
func setPrintArea(f *excelize.File, sheetName string, rows [][]string) error {
	box, ok := scanCells(rows)
	if !ok {
		return nil
	}
	area, err := box.ref(true)
	if err != nil {
		return err
	}
	quoted := "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	return f.SetDefinedName(&excelize.DefinedName{
		Name:     printAreaName,
		RefersTo: quoted + "!" + area,
		Scope:    sheetName,
	})
}

// readPrintAreas returns the print area range ("A1:D10") of each sheet that
// defines one.
func readPrintAreas(f *excelize.File) map[string]string {
	result := make(map[string]string)
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, printAreaName) {
			continue
		}
		sheetName, area := parsePrintAreaReference(dn.RefersTo)
		if dn.Scope != "" && !strings.EqualFold(dn.Scope, "Workbook") {
			sheetName = dn.Scope
		}
		if sheetName != "" && area != "" {
			result[sheetName] = area
		}
	}
	return result
}

// parsePrintAreaReference splits 'Sheet'!$A$1:$D$10 into the sheet name and
// a plain A1:D10 range. Only the first area of a multi-area reference is kept.
func parsePrintAreaReference(ref string) (string, string) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")
	part := strings.TrimSpace(strings.Split(ref, ",")[0])
	idx := strings.LastIndex(part, "!")
	if idx < 0 {
		return "", ""
	}
	sheet := part[:idx]
	if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	cells := strings.Split(strings.ReplaceAll(part[idx+1:], "$", ""), ":")
	if len(cells) != 2 {
		return "", ""
	}
	for _, c := range cells {
		if _, _, err := excelize.CellNameToCoordinates(c); err != nil {
			return "", ""
		}
	}
	return sheet, cells[0] + ":" + cells[1]
}
