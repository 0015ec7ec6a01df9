package main

import (
	"github.com/spf13/cobra"

	"github.com/corralhq/corral/client"
)

func newContactCmd() *cobra.Command {
	return newRecordCmd("contact", "contacts",
		func() *client.RecordService[client.Contact, client.ContactRequest] { return apiClient.Contacts },
		recordTable[client.Contact]{
			headers: []string{"ID", "NAME", "EMAIL", "AGE"},
			row: func(c *client.Contact) []string {
				return []string{
					c.ID,
					truncate(c.FirstName+" "+c.LastName, 40),
					c.Email,
					fmtIntPtr(c.Age),
				}
			},
			id: func(c *client.Contact) string { return c.ID },
		})
}
