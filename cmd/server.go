package cmd

import (
	"github.com/fncall/server"

	"github.com/spf13/cobra"
)

var (
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "serve POST /function/call over HTTP",
		RunE:  runServerCmd,
	}
)

func init() {
	serverCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serverCmd)
}

func runServerCmd(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		v.Set("server.addr", addr)
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	return server.NewServer(&a.conf.Server, a.svc).Run(cmd.Context())
}
