package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/phenhance/internal/tracking"
)

var searchOpts struct {
	count    int
	category string
}

var searchCmd = &cobra.Command{
	Use:   "search <query> [key=value ...]",
	Short: "Send a search event",
	Long: `Send a search event with the query, result count and category.

Extra key=value properties are added to the event and override the
search_* keys when they share a name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchOpts.count, "count", 0,
		"Number of results the search returned")
	searchCmd.Flags().StringVar(&searchOpts.category, "category", "",
		"Search category")
}

func runSearch(cmd *cobra.Command, args []string) error {
	extra, err := parseProperties(args[1:])
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.coordinator.TrackSearch(tracking.SearchData{
		Query:        args[0],
		ResultsCount: searchOpts.count,
		Category:     searchOpts.category,
		Extra:        extra,
	})
	return nil
}
