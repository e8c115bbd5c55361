package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/scumlog/scumlog-go/internal/logfinder"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List log categories and their default file patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tPATTERN")
		for _, c := range event.Categories() {
			fmt.Fprintf(w, "%s\t%s\n", c, logfinder.DefaultPattern(c))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

// validCategoryNames returns the category names in display order.
func validCategoryNames() []string {
	cats := event.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

// normalizeCategories validates category names, case-insensitively, and
// drops duplicates while keeping order.
func normalizeCategories(in []string) ([]event.Category, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[event.Category]bool, len(in))
	var out []event.Category
	for _, raw := range in {
		c := event.Category(strings.ToLower(strings.TrimSpace(raw)))
		if c == "" {
			continue
		}
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q (valid: %s)", raw, strings.Join(validCategoryNames(), ", "))
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// inferCategory returns the category whose default file pattern matches the
// base name of path.
func inferCategory(path string) (event.Category, bool) {
	base := filepath.Base(path)
	for _, c := range event.Categories() {
		if ok, _ := doublestar.Match(logfinder.DefaultPattern(c), base); ok {
			return c, true
		}
	}
	return "", false
}
