package cmd

import (
	"os"

	"github.com/fncall/stdio"

	"github.com/spf13/cobra"
)

var (
	stdioCmd = &cobra.Command{
		Use:   "stdio",
		Short: "answer one JSON call request per line on stdin",
		RunE:  runStdioCmd,
	}
)

func init() {
	rootCmd.AddCommand(stdioCmd)
}

func runStdioCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return stdio.Serve(cmd.Context(), os.Stdin, os.Stdout, a.svc)
}
