package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scumlog/scumlog-go/internal/config"
	"github.com/scumlog/scumlog-go/internal/cursor"
)

var cursorsCmd = &cobra.Command{
	Use:   "cursors",
	Short: "Show the stored read position of every source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetString("config"))
		if err != nil {
			return err
		}
		store, err := cursor.NewStore(cfg.StateDir)
		if err != nil {
			return err
		}
		curs, err := store.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tLINE\tUPDATED\tFILE")
		for _, c := range curs {
			updated := "-"
			if !c.LastUpdate.IsZero() {
				updated = c.LastUpdate.Local().Format(time.DateTime)
			}
			file := c.CurrentFile
			if file == "" {
				file = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.Source, c.LastLineNumber, updated, file)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(cursorsCmd)
}
