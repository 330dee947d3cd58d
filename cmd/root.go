package cmd

import (
	"log"

	"github.com/fncall/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgfile string
	v       *viper.Viper

	rootCmd = &cobra.Command{
		Use:   "fncall",
		Short: "Tool-call orchestration proxy between language models and live data functions",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgfile, "config", "", "config file (default is $HOME/.fncall.yaml)")
	rootCmd.PersistentFlags().Int("budget", 0, "maximum number of model rounds per request")
	v = viper.New()
}

func initConfig(cmd *cobra.Command) error {
	var err error
	v, err = config.New(cfgfile)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("budget"); f != nil && f.Changed {
		v.Set("loop.budget", f.Value.String())
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Printf("Using config file: %v", used)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
