package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/codec"
)

func newCmdImport() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all sheets with the sheets of an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("file not found: %s", args[0])
			}
			defer f.Close()

			st, err := a.openStore(cmd.Context(), sheetpm.WithCodecOptions(codec.Options{Password: password}))
			if err != nil {
				return err
			}
			n, err := st.ImportFile(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sheet(s) from %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password of an encrypted workbook")
	return cmd
}

func newCmdExport() *cobra.Command {
	var (
		password     string
		inferNumbers bool
		printArea    bool
	)
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write all sheets to an xlsx file (default: <workbook name>.xlsx)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context(), sheetpm.WithCodecOptions(codec.Options{
				Password:     password,
				InferNumbers: inferNumbers,
				PrintArea:    printArea,
			}))
			if err != nil {
				return err
			}
			path := st.ExportFileName()
			if len(args) == 1 {
				path = args[0]
			}

			var buf bytes.Buffer
			if err := st.ExportFile(cmd.Context(), &buf); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sheet(s) to %s\n", len(st.Sheets()), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Encrypt the exported workbook with a password")
	cmd.Flags().BoolVar(&inferNumbers, "infer-numbers", false, "Write numeric-looking cells as numbers")
	cmd.Flags().BoolVar(&printArea, "print-area", false, "Set each sheet's print area to its used range")
	return cmd
}
