package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

func newTaskCmd() *cobra.Command {
	return newRecordCmd("task", "tasks",
		func() *client.RecordService[client.Task, client.TaskRequest] { return apiClient.Tasks },
		recordTable[client.Task]{
			headers: []string{"ID", "PROJECT", "TITLE", "DONE", "DUE"},
			row: func(t *client.Task) []string {
				return []string{
					t.ID,
					t.ProjectID,
					truncate(t.Title, 40),
					strconv.FormatBool(t.Done),
					fmtDatePtr(t.DueOn),
				}
			},
			id: func(t *client.Task) string { return t.ID },
		})
}
