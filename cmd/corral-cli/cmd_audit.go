package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

func newAuditCmd() *cobra.Command {
	var (
		entityType string
		entityID   string
		action     string
		since      string
		limit      int
		offset     int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit log for the caller's domain",
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.AuditQueryOptions{
				EntityType: entityType,
				EntityID:   entityID,
				Action:     action,
				Limit:      limit,
				Offset:     offset,
			}
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					fatal("parsing --since", err)
				}
				opts.Since = &t
			}
			entries, hasMore, err := apiClient.Audit.Query(context.Background(), opts)
			if err != nil {
				fatal("querying audit log", err)
			}
			switch flagFmt {
			case "quiet":
				for i := range entries {
					fmt.Println(entries[i].ID)
				}
			case "table":
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.CreatedAt.Format(time.RFC3339),
						e.Action,
						e.EntityType,
						e.EntityID,
					})
				}
				formatTable([]string{"ID", "TIME", "ACTION", "ENTITY", "ENTITY_ID"}, rows)
				if hasMore {
					fmt.Println("(more entries, raise --offset)")
				}
			default:
				formatJSON(map[string]any{"data": entries, "has_more": hasMore})
			}
		},
	}
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Filter by entity type (project|contact|category|task|domain)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "Filter by entity ID")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (create|update|delete|...)")
	cmd.Flags().StringVar(&since, "since", "", "Only entries at or after this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")

	var retentionDays int
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete old audit entries across all domains (admin key required)",
		Run: func(cmd *cobra.Command, args []string) {
			deleted, err := apiClient.Audit.Purge(context.Background(), retentionDays)
			if err != nil {
				fatal("purging audit log", err)
			}
			if flagFmt == "quiet" {
				formatQuiet(strconv.Itoa(deleted))
				return
			}
			fmt.Printf("Deleted %d audit entries older than %d days\n", deleted, retentionDays)
		},
	}
	purgeCmd.Flags().IntVar(&retentionDays, "retention-days", 90, "Keep entries newer than this many days")

	cmd.AddCommand(purgeCmd)
	return cmd
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
