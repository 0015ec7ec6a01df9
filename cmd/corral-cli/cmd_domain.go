package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

var domainHeaders = []string{"ID", "NAME", "ACTIVE", "CREATED"}

func domainRow(d *client.Domain) []string {
	return []string{
		d.ID,
		truncate(d.Name, 40),
		strconv.FormatBool(d.Active),
		d.CreatedAt.Format("2006-01-02"),
	}
}

func newDomainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage tenant domains (admin key required)",
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a domain and print its API key (shown once)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dom, err := apiClient.Domains.Create(context.Background(), args[0])
			if err != nil {
				fatal("creating domain", err)
			}
			printDomainWithKey(dom)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all domains",
		Run: func(cmd *cobra.Command, args []string) {
			domains, err := apiClient.Domains.List(context.Background())
			if err != nil {
				fatal("listing domains", err)
			}
			switch flagFmt {
			case "quiet":
				for i := range domains {
					fmt.Println(domains[i].ID)
				}
			case "table":
				rows := make([][]string, 0, len(domains))
				for i := range domains {
					rows = append(rows, domainRow(&domains[i]))
				}
				formatTable(domainHeaders, rows)
			default:
				formatJSON(domains)
			}
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a domain by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dom, err := apiClient.Domains.Get(context.Background(), args[0])
			if err != nil {
				fatal("getting domain", err)
			}
			switch flagFmt {
			case "table":
				formatTable(domainHeaders, [][]string{domainRow(dom)})
			default:
				output(dom, dom.ID)
			}
		},
	}

	var updateName string
	var updateActive bool
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or (de)activate a domain",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.UpdateDomainRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &updateName
			}
			if cmd.Flags().Changed("active") {
				req.Active = &updateActive
			}
			if req.Name == nil && req.Active == nil {
				fatal("updating domain", fmt.Errorf("nothing to update, pass --name or --active"))
			}
			dom, err := apiClient.Domains.Update(context.Background(), args[0], req)
			if err != nil {
				fatal("updating domain", err)
			}
			output(dom, dom.ID)
		},
	}
	updateCmd.Flags().StringVar(&updateName, "name", "", "New domain name")
	updateCmd.Flags().BoolVar(&updateActive, "active", true, "Whether the domain's keys authenticate")

	rotateCmd := &cobra.Command{
		Use:   "rotate-key <id>",
		Short: "Replace a domain's API key (old key stops working immediately)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dom, err := apiClient.Domains.RotateKey(context.Background(), args[0])
			if err != nil {
				fatal("rotating key", err)
			}
			printDomainWithKey(dom)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a domain and every record it owns",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Domains.Delete(context.Background(), args[0]); err != nil {
				fatal("deleting domain", err)
			}
			if flagFmt == "quiet" {
				formatQuiet(args[0])
				return
			}
			fmt.Printf("Deleted domain %s\n", args[0])
		},
	}

	cmd.AddCommand(createCmd, listCmd, getCmd, updateCmd, rotateCmd, deleteCmd)
	return cmd
}

// printDomainWithKey shows a domain plus its one-time plaintext key. Quiet
// mode prints only the key so scripts can capture it.
func printDomainWithKey(dom *client.DomainWithKey) {
	switch flagFmt {
	case "quiet":
		formatQuiet(dom.APIKey)
	case "table":
		formatTable(domainHeaders, [][]string{domainRow(&dom.Domain)})
		fmt.Printf("API key (store it now, shown once): %s\n", dom.APIKey)
	default:
		formatJSON(dom)
	}
}
