package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

func newCategoryCmd() *cobra.Command {
	return newRecordCmd("category", "categories",
		func() *client.RecordService[client.Category, client.CategoryRequest] { return apiClient.Categories },
		recordTable[client.Category]{
			headers: []string{"ID", "NAME", "RANK"},
			row: func(c *client.Category) []string {
				return []string{c.ID, truncate(c.Name, 40), strconv.FormatInt(c.Rank, 10)}
			},
			id: func(c *client.Category) string { return c.ID },
		})
}
