package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scumlog/scumlog-go/pkg/scumlog"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var (
	// parse flags
	parseCategory string
	parseFormat   string
	parseEncoding string
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse log files and print their events",
	Long: `Parse whole log files offline and print the events they contain.
Nothing is sent and no read position is stored.

The category is taken from the file name (kill_*.log, economy_*.log, ...)
unless --category is given.

Examples:
  scumlog parse kill_20250719183544.log
  scumlog parse --format pretty economy_*.log
  scumlog parse -C famepoints old.log | jq 'select(.kind == "fame_points")'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseCategory, "category", "C", "",
		"Log category (inferred from the file name if not specified)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().StringVar(&parseEncoding, "encoding", "utf-16le",
		"File encoding: utf-16le, utf-16be, utf-8")
	_ = parseCmd.RegisterFlagCompletionFunc("category",
		cobra.FixedCompletions(validCategoryNames(), cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if !validFormats[parseFormat] {
		return fmt.Errorf("unknown format: %s", parseFormat)
	}
	var forced event.Category
	if parseCategory != "" {
		cats, err := normalizeCategories([]string{parseCategory})
		if err != nil {
			return err
		}
		forced = cats[0]
	}

	out := cmd.OutOrStdout()
	for _, path := range args {
		c := forced
		if c == "" {
			var ok bool
			if c, ok = inferCategory(path); !ok {
				return fmt.Errorf("%s: cannot infer category, use --category", path)
			}
		}
		events, err := scumlog.ParseFile(c, path, scumlog.Encoding(parseEncoding))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, ev := range events {
			if err := OutputEvent(parseFormat, ev, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}
	return nil
}
