package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/codec"
)

func newCmdWorkbook() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workbook",
		Short: "Show or rename the workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			wb := st.Workbook()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(wb.Name), color.New(color.FgHiBlack).Sprintf("(%s)", wb.ID))
			fmt.Fprintf(out, "  sheets:   %d\n", len(wb.Sheets))
			fmt.Fprintf(out, "  modified: %s\n", wb.LastModified.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  export:   %s\n", st.ExportFileName())
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename NAME",
		Short: "Rename the workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return st.RenameWorkbook(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(rename)
	return cmd
}

func newCmdSheet() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Manage sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCmdSheetList())
	cmd.AddCommand(newCmdSheetCreate())
	cmd.AddCommand(newCmdSheetDelete())
	cmd.AddCommand(newCmdSheetRename())
	cmd.AddCommand(newCmdSheetSwitch())
	cmd.AddCommand(newCmdSheetDuplicate())
	cmd.AddCommand(newCmdSheetShow())
	return cmd
}

func newCmdSheetList() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sheets in display order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			sheets := st.Sheets()
			out := cmd.OutOrStdout()
			if len(sheets) == 0 {
				fmt.Fprintln(out, "No sheets. Create one with: sheetpm sheet create NAME")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, s := range sheets {
				marker := " "
				name := s.Name
				if s.Active {
					marker = color.New(color.FgGreen).Sprint("*")
					name = color.New(color.Bold).Sprint(s.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n", marker, name, s.Columns, s.Rows,
					s.LastModified.Format("2006-01-02 15:04"), color.New(color.FgHiBlack).Sprint(s.ID))
			}
			return tw.Flush()
		},
	}
}

func newCmdSheetCreate() *cobra.Command {
	var columns, rows int
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := st.CreateSheet(cmd.Context(), args[0], columns, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sheet %s (%s)\n", args[0], id)
			return nil
		},
	}
	cmd.Flags().IntVar(&columns, "columns", sheetpm.DefaultColumns, "Number of columns")
	cmd.Flags().IntVar(&rows, "rows", sheetpm.DefaultRows, "Number of rows")
	return cmd
}

// sheetCommand builds a command taking one sheet reference (id or name).
func sheetCommand(use, short string, run func(cmd *cobra.Command, st *sheetpm.Store, id string, args []string) error, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveSheet(st, args[0])
			if err != nil {
				return err
			}
			return run(cmd, st, id, args[1:])
		},
	}
}

func newCmdSheetDelete() *cobra.Command {
	return sheetCommand("delete SHEET", "Delete a sheet", func(cmd *cobra.Command, st *sheetpm.Store, id string, _ []string) error {
		if err := st.DeleteSheet(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted sheet %s\n", id)
		return nil
	}, 1)
}

func newCmdSheetRename() *cobra.Command {
	return sheetCommand("rename SHEET NAME", "Rename a sheet", func(cmd *cobra.Command, st *sheetpm.Store, id string, args []string) error {
		return st.RenameSheet(cmd.Context(), id, args[0])
	}, 2)
}

func newCmdSheetSwitch() *cobra.Command {
	return sheetCommand("switch SHEET", "Make a sheet the active sheet", func(cmd *cobra.Command, st *sheetpm.Store, id string, _ []string) error {
		return st.SwitchSheet(cmd.Context(), id)
	}, 1)
}

func newCmdSheetDuplicate() *cobra.Command {
	return sheetCommand("duplicate SHEET", "Copy a sheet", func(cmd *cobra.Command, st *sheetpm.Store, id string, _ []string) error {
		newID, err := st.DuplicateSheet(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Duplicated sheet as %s\n", newID)
		return nil
	}, 1)
}

func newCmdSheetShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [SHEET]",
		Short: "Print a sheet as a table (default: the active sheet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id := st.CurrentSheetID()
			if len(args) == 1 {
				if id, err = resolveSheet(st, args[0]); err != nil {
					return err
				}
			}
			sh, ok := st.Sheet(id)
			if !ok {
				return sheetpm.ErrNoActiveSheet
			}

			out := cmd.OutOrStdout()
			header := color.New(color.Bold)
			fmt.Fprintf(out, "%s  %s\n", header.Sprint(sh.Name), color.New(color.FgHiBlack).Sprint(sh.ID))
			if used := codec.UsedRange(sh.Data); used != "" {
				fmt.Fprintf(out, "used range %s, %d non-empty cells\n", used, codec.CountNonEmpty(sh.Data))
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			names := make([]string, len(sh.Columns))
			for i, c := range sh.Columns {
				names[i] = c.Name
			}
			fmt.Fprintf(tw, "#\t%s\n", strings.Join(names, "\t"))
			for i, row := range sh.Data {
				fmt.Fprintf(tw, "%d\t%s\n", i+1, strings.Join(row, "\t"))
			}
			return tw.Flush()
		},
	}
	return cmd
}
