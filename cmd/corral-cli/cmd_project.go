package main

import (
	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

func newProjectCmd() *cobra.Command {
	return newRecordCmd("project", "projects",
		func() *client.RecordService[client.Project, client.ProjectRequest] { return apiClient.Projects },
		recordTable[client.Project]{
			headers: []string{"ID", "NAME", "CODE", "STATUS", "BUDGET", "STARTS"},
			row: func(p *client.Project) []string {
				return []string{
					p.ID,
					truncate(p.Name, 40),
					p.Code,
					p.Status,
					fmtFloatPtr(p.Budget),
					fmtDatePtr(p.StartsOn),
				}
			},
			id: func(p *client.Project) string { return p.ID },
		})
}
