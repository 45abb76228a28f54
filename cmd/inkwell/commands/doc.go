package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inkwell/internal/editor"
)

// NewDocCmd creates the doc command group.
func NewDocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Inspect and edit document content",
	}
	cmd.AddCommand(newDocShowCmd())
	return cmd
}

func newDocShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <document-id>",
		Short: "Load a document and print its ordered sections",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocShow,
	}
}

func runDocShow(cmd *cobra.Command, args []string) error {
	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	session := editor.NewSession(args[0], client, editor.Options{
		DebounceInterval: cfg.DebounceMillis,
		Logger:           logger,
	})
	defer session.Close()

	if err := session.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tKIND\tWORDS\tCONTENT")
	for _, sec := range session.Sections() {
		kind := "text"
		content := preview(sec.Content)
		if sec.IsEmbedded() {
			kind = "embed"
			content = fmt.Sprintf("(content #%d)", *sec.EmbeddedContentID)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", sec.OrderIndex, kind, sec.WordCount, content)
	}
	return w.Flush()
}

func preview(content string) string {
	flat := strings.ReplaceAll(content, "\n", " ")
	runes := []rune(flat)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return flat
}
