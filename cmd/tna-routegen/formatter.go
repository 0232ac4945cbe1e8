package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// FormatTable formats data as a table with aligned columns
func FormatTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// FormatSection writes a titled block, ending body with exactly one newline
func FormatSection(w io.Writer, title, body string) error {
	_, err := fmt.Fprintf(w, "== %s ==\n%s\n", title, strings.TrimRight(body, "\n"))
	return err
}
