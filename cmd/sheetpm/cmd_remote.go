package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/remote"
)

func newCmdRemote() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage spreadsheets in Google Drive",
		Long: `Manage spreadsheets in Google Drive. Credentials come from the remote
section of the configuration file or the SHEETPM_TOKEN environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCmdRemoteList())
	cmd.AddCommand(newCmdRemoteCreate())
	cmd.AddCommand(newCmdRemoteOpen())
	cmd.AddCommand(newCmdRemoteShare())
	return cmd
}

// remoteCommand builds a command running against a fresh registry.
func remoteCommand(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, reg *remote.Registry, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			ap, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return run(cmd, ap.registry(cmd.Context()), a)
		},
	}
}

func newCmdRemoteList() *cobra.Command {
	return remoteCommand("list", "List spreadsheets, most recently modified first", cobra.NoArgs,
		func(cmd *cobra.Command, reg *remote.Registry, _ []string) error {
			docs, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintln(out, "No spreadsheets found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, d := range docs {
				owner := ""
				if len(d.Owners) > 0 {
					owner = d.Owners[0].DisplayName
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", color.New(color.Bold).Sprint(d.Title),
					d.Modified.Format("2006-01-02 15:04"), owner, color.New(color.FgCyan).Sprint(d.URL))
			}
			return tw.Flush()
		})
}

func newCmdRemoteCreate() *cobra.Command {
	return remoteCommand("create [TITLE]", "Create an empty spreadsheet", cobra.MaximumNArgs(1),
		func(cmd *cobra.Command, reg *remote.Registry, args []string) error {
			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			doc, err := reg.Create(cmd.Context(), title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", doc.Title, color.New(color.FgCyan).Sprint(doc.URL))
			return nil
		})
}

func newCmdRemoteOpen() *cobra.Command {
	return remoteCommand("open ID", "Print the URL of a spreadsheet", cobra.ExactArgs(1),
		func(cmd *cobra.Command, reg *remote.Registry, args []string) error {
			url, err := reg.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		})
}

func newCmdRemoteShare() *cobra.Command {
	var role string
	cmd := remoteCommand("share ID EMAIL", "Grant a user access to a spreadsheet", cobra.ExactArgs(2),
		func(cmd *cobra.Command, reg *remote.Registry, args []string) error {
			if err := reg.Share(cmd.Context(), args[0], args[1], models.Role(role)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s with %s as %s\n", args[0], args[1], role)
			return nil
		})
	cmd.Flags().StringVar(&role, "role", string(models.RoleReader), "Access role (reader|writer|owner)")
	return cmd
}
