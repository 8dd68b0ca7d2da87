// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// FormatTable writes ranked results as a human-readable table to w.
func FormatTable(resp Response, w io.Writer) {
	for _, se := range resp.SourceErrors {
		fmt.Fprintf(w, "warning: source %s failed: %s\n", se.Source, se.Error)
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-16s  %-6s  %s\n",
		"Rank", "Title", "Type", "Score", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range resp.Results {
		fmt.Fprintf(w, "%-4d  %-50s  %-16s  %-6.3f  %s\n",
			i+1, truncate(r.Title, 50), r.Type, r.Score(), r.URL)
	}

	fmt.Fprintf(w, "\n%d results (page %d)\n", len(resp.Results), resp.Page)
}

// FormatJSON writes the response envelope as indented JSON to w.
func FormatJSON(resp Response, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
