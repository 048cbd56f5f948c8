// Package main provides the CLI entry point for sheetpm.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/internal/config"
	"github.com/ukaji3/sheetpm-go/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheetpm",
		Short: "Spreadsheet-style project management workbook",
		Long: `sheetpm keeps a persisted workbook of project sheets, edits their cells,
imports and exports xlsx files and manages spreadsheets in Google Drive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config-dir", "", "Configuration directory (env "+config.DirEnvKey+", default ~/"+config.DirName+")")
	cmd.PersistentFlags().String("store", "", "Workbook store (file|sqlite) (env "+config.StoreEnvKey+")")
	cmd.PersistentFlags().String("log-format", "", "Log format (human|text|json)")
	cmd.PersistentFlags().String("log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		ctx := logging.WithLogger(c.Context(), a.logger)
		c.SetContext(withApp(ctx, a))
		return nil
	}

	cmd.AddCommand(newCmdWorkbook())
	cmd.AddCommand(newCmdSheet())
	cmd.AddCommand(newCmdCell())
	cmd.AddCommand(newCmdColumn())
	cmd.AddCommand(newCmdRow())
	cmd.AddCommand(newCmdImport())
	cmd.AddCommand(newCmdExport())
	cmd.AddCommand(newCmdRemote())
	return cmd
}

// execute runs root and releases what the executed command opened.
func execute(ctx context.Context, root *cobra.Command) (*cobra.Command, error) {
	executed, err := root.ExecuteContextC(ctx)
	if executed != nil && executed.Context() != nil {
		if a, ok := executed.Context().Value(appKey).(*app); ok {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing store: %w", cerr)
			}
		}
	}
	return executed, err
}

func main() {
	root := newRootCmd()
	executed, err := execute(context.Background(), root)
	if err != nil {
		ctx := context.Background()
		if executed != nil && executed.Context() != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		if _, ok := ctx.Value(appKey).(*app); !ok {
			// The logger was never configured; make sure the error is seen.
			root.PrintErrln("Error:", err)
		}
		os.Exit(1)
	}
}
