package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scumlog/scumlog-go/internal/config"
	"github.com/scumlog/scumlog-go/internal/logfinder"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file and the source directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetString("config"))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		problems := 0
		for _, s := range cfg.Sources {
			state := "ok"
			switch {
			case !s.IsEnabled():
				state = "disabled"
			case !s.Channel.Configured():
				state = "no channel"
				problems++
			default:
				if _, err := logfinder.ValidateDir(s.Dir); err != nil {
					state = err.Error()
					problems++
				}
			}
			fmt.Fprintf(out, "%-16s %-28s %s\n", s.Name, s.Pattern, state)
		}
		if problems > 0 {
			return fmt.Errorf("%d source(s) cannot start", problems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
