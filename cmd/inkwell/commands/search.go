package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inkwell/internal/domain/models"
	"inkwell/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search related content for embedding or citing",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	session := search.NewSession(client, logger)

	var (
		results   []models.SearchResult
		searchErr error
	)
	session.Do(cmd.Context(), query, func(r []models.SearchResult, err error) {
		results, searchErr = r, err
	})
	session.Wait()

	if searchErr != nil {
		return fmt.Errorf("searching: %w", searchErr)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPREVIEW")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.ContentID, r.Title, preview(r.Preview))
	}
	return w.Flush()
}
