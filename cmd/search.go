package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/search"
)

var searchSimple bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the plugin registry",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchSimple, "simple", false, "substring match instead of fuzzy search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	doc, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}

	results := search.FuzzySearch(doc, query)
	if searchSimple {
		results = search.SimpleSearch(doc, query)
	}

	if len(results) == 0 {
		fmt.Println(i18n.T("NoSearchResults", map[string]any{"Query": query}))
		return nil
	}

	for _, res := range results {
		e := res.Entry
		badge := " "
		if e.Verified {
			badge = "*"
		}
		fmt.Printf("%s %-24s %-10s %s\n", badge, e.ID, e.LatestVersion, e.Description)
	}

	return nil
}
