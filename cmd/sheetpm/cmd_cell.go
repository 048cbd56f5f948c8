package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/xuri/excelize/v2"
)

// activeCommand builds a command editing the active sheet.
func activeCommand(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, st *sheetpm.Store, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			ap, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := ap.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return run(cmd, st, a)
		},
	}
}

// parseColumn accepts a column letter (A, AB) or a 1-based number and
// returns the 0-based index.
func parseColumn(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column %d out of range", n)
		}
		return n - 1, nil
	}
	n, err := excelize.ColumnNameToNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", s, err)
	}
	return n - 1, nil
}

// parseRow accepts a 1-based row number and returns the 0-based index.
func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row %q", s)
	}
	return n - 1, nil
}

func newCmdCell() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Edit cells of the active sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(activeCommand("set REF VALUE", "Set a cell by A1 reference (row 1 is the first data row)", cobra.ExactArgs(2),
		func(cmd *cobra.Command, st *sheetpm.Store, args []string) error {
			col, row, err := excelize.CellNameToCoordinates(args[0])
			if err != nil {
				return fmt.Errorf("invalid cell reference %q: %w", args[0], err)
			}
			return st.UpdateCell(cmd.Context(), row-1, col-1, args[1])
		}))
	return cmd
}

func newCmdColumn() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Edit columns of the active sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(activeCommand("add", "Append a column", cobra.NoArgs,
		func(cmd *cobra.Command, st *sheetpm.Store, _ []string) error {
			return st.AddColumn(cmd.Context())
		}))
	cmd.AddCommand(activeCommand("rename COLUMN NAME", "Set the display name of a column", cobra.ExactArgs(2),
		func(cmd *cobra.Command, st *sheetpm.Store, args []string) error {
			col, err := parseColumn(args[0])
			if err != nil {
				return err
			}
			return st.UpdateColumnName(cmd.Context(), col, args[1])
		}))
	cmd.AddCommand(activeCommand("delete COLUMN", "Delete a column and its cells", cobra.ExactArgs(1),
		func(cmd *cobra.Command, st *sheetpm.Store, args []string) error {
			col, err := parseColumn(args[0])
			if err != nil {
				return err
			}
			return st.DeleteColumn(cmd.Context(), col)
		}))
	return cmd
}

func newCmdRow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Edit rows of the active sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(activeCommand("add", "Append an empty row", cobra.NoArgs,
		func(cmd *cobra.Command, st *sheetpm.Store, _ []string) error {
			return st.AddRow(cmd.Context())
		}))
	cmd.AddCommand(activeCommand("insert AFTER", "Insert an empty row after row AFTER (0 inserts at the top)", cobra.ExactArgs(1),
		func(cmd *cobra.Command, st *sheetpm.Store, args []string) error {
			after, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid row %q", args[0])
			}
			return st.AddRowAt(cmd.Context(), after-1)
		}))
	cmd.AddCommand(activeCommand("delete ROW", "Delete a row", cobra.ExactArgs(1),
		func(cmd *cobra.Command, st *sheetpm.Store, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			return st.DeleteRow(cmd.Context(), row)
		}))
	return cmd
}
