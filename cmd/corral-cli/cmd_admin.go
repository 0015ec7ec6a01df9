package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server administration",
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Run: func(cmd *cobra.Command, args []string) {
			h, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("checking health", err)
			}
			switch flagFmt {
			case "quiet":
				formatQuiet(h.Status)
			case "table":
				formatTable(
					[]string{"STATUS", "VERSION", "DATABASE", "UPTIME"},
					[][]string{{h.Status, h.Version, h.Database, fmt.Sprintf("%.0fs", h.UptimeSeconds)}},
				)
			default:
				formatJSON(h)
			}
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts for the caller's domain",
		Run: func(cmd *cobra.Command, args []string) {
			s, err := apiClient.Stats(context.Background())
			if err != nil {
				fatal("fetching stats", err)
			}
			switch flagFmt {
			case "table":
				formatTable(
					[]string{"COLLECTION", "COUNT"},
					[][]string{
						{"projects", strconv.Itoa(s.Projects)},
						{"contacts", strconv.Itoa(s.Contacts)},
						{"categories", strconv.Itoa(s.Categories)},
						{"tasks", strconv.Itoa(s.Tasks)},
						{"audit_entries", strconv.Itoa(s.AuditEntries)},
					},
				)
			default:
				formatJSON(s)
			}
		},
	}

	cmd.AddCommand(healthCmd, statsCmd)
	return cmd
}
