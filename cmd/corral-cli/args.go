package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

var validActions = map[string]bool{
	client.Exists:        true,
	client.IsNull:        true,
	client.IsNullOrEmpty: true,
	client.StartsWith:    true,
	client.Contains:      true,
	client.EndsWith:      true,
	client.Equals:        true,
	client.NotEquals:     true,
	client.Greater:       true,
	client.GreaterEqual:  true,
	client.Less:          true,
	client.LessEqual:     true,
}

// queryFlags holds the filter/sort/paging flags shared by the list, query,
// neighbors and export subcommands.
type queryFlags struct {
	filters []string
	sorts   []string
	search  string
	page    int
	length  int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&q.filters, "filter", nil, `Filter as "path:action[:v1,v2]" (repeatable, values OR together)`)
	cmd.Flags().StringArrayVar(&q.sorts, "sort", nil, `Sort as "path[:desc]" (repeatable)`)
	cmd.Flags().StringVar(&q.search, "search", "", "Match a substring across text properties")
	cmd.Flags().IntVar(&q.page, "page", 0, "Page number (0-based)")
	cmd.Flags().IntVar(&q.length, "length", 0, "Page length (server default 50)")
}

func (q *queryFlags) build() (*client.QueryRequest, error) {
	req := &client.QueryRequest{Search: q.search}
	for _, s := range q.filters {
		f, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		req.Filters = append(req.Filters, f)
	}
	for _, s := range q.sorts {
		spec, err := parseSort(s)
		if err != nil {
			return nil, err
		}
		req.Sorts = append(req.Sorts, spec)
	}
	if q.page > 0 {
		req.Page = q.page
	}
	if q.length > 0 {
		req.Length = &q.length
	}
	return req, nil
}

// parseFilter parses "path:action[:v1,v2]". Presence actions (exists,
// is_null, is_null_or_empty) take no values; comma-separated values OR
// together.
func parseFilter(s string) (client.PropertyFilter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return client.PropertyFilter{}, fmt.Errorf("filter %q: want \"path:action[:values]\"", s)
	}
	f := client.PropertyFilter{Path: parts[0], Action: parts[1]}
	if !validActions[f.Action] {
		return client.PropertyFilter{}, fmt.Errorf("filter %q: unknown action %q", s, f.Action)
	}
	if len(parts) == 3 && parts[2] != "" {
		f.Values = strings.Split(parts[2], ",")
	}
	return f, nil
}

// parseSort parses "path[:asc|desc]". Direction defaults to ascending.
func parseSort(s string) (client.SortSpec, error) {
	parts := strings.SplitN(s, ":", 2)
	if parts[0] == "" {
		return client.SortSpec{}, fmt.Errorf("sort %q: missing path", s)
	}
	spec := client.SortSpec{Path: parts[0]}
	if len(parts) == 2 {
		switch parts[1] {
		case "desc":
			spec.Descending = true
		case "asc", "":
		default:
			return client.SortSpec{}, fmt.Errorf("sort %q: direction must be asc or desc", s)
		}
	}
	return spec, nil
}

// readData returns data as bytes, reading stdin when data is "-".
func readData(data string) ([]byte, error) {
	if data == "-" {
		return io.ReadAll(os.Stdin)
	}
	return []byte(data), nil
}

// readFileOrStdin reads the named file, or stdin when path is "-".
func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
