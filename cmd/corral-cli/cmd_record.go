package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

// recordTable describes how one collection renders in table mode.
type recordTable[T any] struct {
	headers []string
	row     func(*T) []string
	id      func(*T) string
}

// neighborOutput is the JSON shape printed by the neighbors subcommand.
type neighborOutput[T any] struct {
	Record   *T     `json:"record"`
	Next     string `json:"next_cursor,omitempty"`
	Previous string `json:"previous_cursor,omitempty"`
}

// newRecordCmd builds the standard command set for one record collection:
// create, bulk, get, replace, delete, list, query, neighbors and export.
// svc resolves at run time because the API client is built in the root
// command's PersistentPreRun.
func newRecordCmd[T, R any](use, plural string, svc func() *client.RecordService[T, R], tbl recordTable[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: "Manage " + plural,
	}

	var createData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + use + " from a JSON payload",
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := readData(createData)
			if err != nil {
				fatal("reading --data", err)
			}
			var req R
			if err := json.Unmarshal(raw, &req); err != nil {
				fatal("parsing --data", err)
			}
			rec, err := svc().Create(context.Background(), &req)
			if err != nil {
				fatal("creating "+use, err)
			}
			output(rec, tbl.id(rec))
		},
	}
	createCmd.Flags().StringVar(&createData, "data", "", `Record JSON ("-" reads stdin)`)
	createCmd.MarkFlagRequired("data")

	var bulkFile string
	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Create up to 1000 " + plural + " in one transaction",
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := readFileOrStdin(bulkFile)
			if err != nil {
				fatal("reading --file", err)
			}
			var reqs []R
			if err := json.Unmarshal(raw, &reqs); err != nil {
				fatal("parsing --file", err)
			}
			items, err := svc().BulkCreate(context.Background(), reqs)
			if err != nil {
				fatal("creating "+plural, err)
			}
			switch flagFmt {
			case "quiet":
				for i := range items {
					fmt.Println(tbl.id(&items[i]))
				}
			case "table":
				rows := make([][]string, 0, len(items))
				for i := range items {
					rows = append(rows, tbl.row(&items[i]))
				}
				formatTable(tbl.headers, rows)
				fmt.Printf("Created: %d\n", len(items))
			default:
				formatJSON(items)
			}
		},
	}
	bulkCmd.Flags().StringVar(&bulkFile, "file", "", `JSON array of records ("-" reads stdin)`)
	bulkCmd.MarkFlagRequired("file")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a " + use + " by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rec, err := svc().Get(context.Background(), args[0])
			if err != nil {
				fatal("getting "+use, err)
			}
			switch flagFmt {
			case "table":
				formatTable(tbl.headers, [][]string{tbl.row(rec)})
			default:
				output(rec, tbl.id(rec))
			}
		},
	}

	var replaceData string
	replaceCmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace a " + use + " by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := readData(replaceData)
			if err != nil {
				fatal("reading --data", err)
			}
			var req R
			if err := json.Unmarshal(raw, &req); err != nil {
				fatal("parsing --data", err)
			}
			rec, changed, err := svc().Replace(context.Background(), args[0], &req)
			if err != nil {
				fatal("replacing "+use, err)
			}
			if !changed && flagFmt != "quiet" {
				fmt.Fprintln(os.Stderr, "(no stored values changed)")
			}
			output(rec, tbl.id(rec))
		},
	}
	replaceCmd.Flags().StringVar(&replaceData, "data", "", `Record JSON ("-" reads stdin)`)
	replaceCmd.MarkFlagRequired("data")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + use + " by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := svc().Delete(context.Background(), args[0]); err != nil {
				fatal("deleting "+use, err)
			}
			if flagFmt == "quiet" {
				formatQuiet(args[0])
				return
			}
			fmt.Printf("Deleted %s %s\n", use, args[0])
		},
	}

	var listPage, listLength int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + plural + " in primary-key order",
		Run: func(cmd *cobra.Command, args []string) {
			page, err := svc().List(context.Background(), listPage, listLength)
			if err != nil {
				fatal("listing "+plural, err)
			}
			printPage(page, tbl)
		},
	}
	listCmd.Flags().IntVar(&listPage, "page", 0, "Page number (0-based)")
	listCmd.Flags().IntVar(&listLength, "length", 0, "Page length (server default 50)")

	var queryQF queryFlags
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query " + plural + " with filters and sorts",
		Run: func(cmd *cobra.Command, args []string) {
			req, err := queryQF.build()
			if err != nil {
				fatal("building query", err)
			}
			page, err := svc().Query(context.Background(), req)
			if err != nil {
				fatal("querying "+plural, err)
			}
			printPage(page, tbl)
		},
	}
	queryQF.register(queryCmd)

	var neighborQF queryFlags
	neighborsCmd := &cobra.Command{
		Use:   "neighbors <id>",
		Short: "Show a " + use + " with cursors to its query neighbors",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req, err := neighborQF.build()
			if err != nil {
				fatal("building query", err)
			}
			rec, nb, err := svc().Neighbors(context.Background(), args[0], req)
			if err != nil {
				fatal("fetching neighbors", err)
			}
			switch flagFmt {
			case "quiet":
				formatQuiet(tbl.id(rec))
			case "table":
				formatTable(tbl.headers, [][]string{tbl.row(rec)})
				fmt.Printf("Next: %s\nPrevious: %s\n", nb.Next, nb.Previous)
			default:
				formatJSON(neighborOutput[T]{Record: rec, Next: nb.Next, Previous: nb.Previous})
			}
		},
	}
	neighborQF.register(neighborsCmd)

	var exportQF queryFlags
	var exportFormat, exportOut string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export " + plural + " matching a query to CSV or XLSX",
		Run: func(cmd *cobra.Command, args []string) {
			req, err := exportQF.build()
			if err != nil {
				fatal("building query", err)
			}
			res, err := svc().Export(context.Background(), exportFormat, req)
			if err != nil {
				fatal("exporting "+plural, err)
			}
			if exportOut == "-" {
				if _, err := os.Stdout.Write(res.Data); err != nil {
					fatal("writing to stdout", err)
				}
				return
			}
			name := exportOut
			if name == "" {
				name = res.Filename
			}
			if err := os.WriteFile(name, res.Data, 0o644); err != nil {
				fatal("writing export file", err)
			}
			fmt.Printf("Exported to %s (%d bytes)\n", name, len(res.Data))
		},
	}
	exportQF.register(exportCmd)
	// Shadows the global output flag; export output is the file itself.
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "File format: csv|xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", `Output file ("-" writes stdout, default server-chosen name)`)

	cmd.AddCommand(createCmd, bulkCmd, getCmd, replaceCmd, deleteCmd, listCmd, queryCmd, neighborsCmd, exportCmd)
	return cmd
}

// printPage renders one result page under the active output format. Table
// mode appends the pre-pagination total.
func printPage[T any](page *client.Page[T], tbl recordTable[T]) {
	switch flagFmt {
	case "quiet":
		for i := range page.Items {
			fmt.Println(tbl.id(&page.Items[i]))
		}
	case "table":
		rows := make([][]string, 0, len(page.Items))
		for i := range page.Items {
			rows = append(rows, tbl.row(&page.Items[i]))
		}
		formatTable(tbl.headers, rows)
		fmt.Printf("Total: %d\n", page.Total)
	default:
		formatJSON(page)
	}
}
