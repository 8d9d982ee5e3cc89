// ABOUTME: Text renderings of Scryfall results for tool responses
// ABOUTME: Search summaries with pagination hints, collection summaries and permalinks
package scryfall

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/oracle/internal/card"
)

// Permalink is the public Scryfall page for a printing.
func Permalink(c card.Card) string {
	return fmt.Sprintf("https://scryfall.com/card/%s/%s", c.Set, c.CollectorNumber)
}

func summaryLine(c card.Card) string {
	line := fmt.Sprintf("• %s (%s) - %s", c.Name, c.SetName, c.TypeLine)
	if c.ManaCost != "" {
		line += fmt.Sprintf(" [%s]", c.ManaCost)
	}
	return line + "\n  Link: " + Permalink(c)
}

func summaries(cards []card.Card) string {
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		lines = append(lines, summaryLine(c))
	}
	return strings.Join(lines, "\n\n")
}

// FormatSearch renders one page of search results. page is 1-based; values
// below 1 are treated as the first page.
func FormatSearch(list card.List, page int) string {
	if page < 1 {
		page = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d cards matching your search:\n\n", list.TotalCards)
	b.WriteString(summaries(list.Data))

	if list.HasMore {
		first := (page-1)*PageSize + 1
		last := (page-1)*PageSize + len(list.Data)
		fmt.Fprintf(&b, "\n\nShowing cards %d-%d of %d. Use page parameter to see more results.", first, last, list.TotalCards)
	}
	return b.String()
}

// FormatCollection renders a collection lookup for requested names.
func FormatCollection(requested int, coll card.Collection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collection lookup results: Found %d of %d cards\n\n", len(coll.Data), requested)

	if len(coll.Data) > 0 {
		b.WriteString("Found cards:\n")
		b.WriteString(summaries(coll.Data))
	}

	if len(coll.NotFound) > 0 {
		fmt.Fprintf(&b, "\n\nNot found (%d):\n", len(coll.NotFound))
		lines := make([]string, 0, len(coll.NotFound))
		for _, nf := range coll.NotFound {
			name := nf.Name
			if name == "" {
				name = "Unknown card"
			}
			lines = append(lines, "• "+name)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

// FormatCard pretty-prints a validated card as JSON.
func FormatCard(c card.Card) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode card: %w", err)
	}
	return string(data), nil
}
