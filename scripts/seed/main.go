// Command seed provisions a demo domain and fills it with sample records via
// the public API. It exists for local development: after `corral` is up and
// migrated, one run gives you a domain key and enough data to exercise
// queries, neighbors and exports by hand.
//
// Usage:
//
//	go run ./scripts/seed -admin-key $CORRAL_ADMIN_KEY [-url http://localhost:8080] [-name demo]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/client"
)

var (
	flagURL      = flag.String("url", "http://localhost:8080", "corral server URL")
	flagAdminKey = flag.String("admin-key", os.Getenv("CORRAL_ADMIN_KEY"), "admin API key")
	flagName     = flag.String("name", "demo", "name for the seeded domain")
	flagProjects = flag.Int("projects", 8, "number of projects to create")
	flagTasks    = flag.Int("tasks", 4, "tasks per project")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *flagAdminKey == "" {
		log.Fatal("admin key required: pass -admin-key or set CORRAL_ADMIN_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
}

func run(ctx context.Context, log *logrus.Logger) error {
	admin := client.New(*flagURL, client.WithAPIKey(*flagAdminKey))

	dom, err := admin.Domains.Create(ctx, *flagName)
	if err != nil {
		return fmt.Errorf("creating domain: %w", err)
	}
	log.WithFields(logrus.Fields{"domain": dom.Name, "id": dom.ID}).Info("domain created")

	// All record writes go through the domain's own key, same as a real tenant.
	c := client.New(*flagURL, client.WithAPIKey(dom.APIKey))

	categories, err := c.Categories.BulkCreate(ctx, sampleCategories())
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	log.WithField("count", len(categories)).Info("categories seeded")

	contacts, err := c.Contacts.BulkCreate(ctx, sampleContacts())
	if err != nil {
		return fmt.Errorf("seeding contacts: %w", err)
	}
	log.WithField("count", len(contacts)).Info("contacts seeded")

	projects, err := c.Projects.BulkCreate(ctx, sampleProjects(*flagProjects, categories, contacts))
	if err != nil {
		return fmt.Errorf("seeding projects: %w", err)
	}
	log.WithField("count", len(projects)).Info("projects seeded")

	tasks, err := c.Tasks.BulkCreate(ctx, sampleTasks(projects, *flagTasks))
	if err != nil {
		return fmt.Errorf("seeding tasks: %w", err)
	}
	log.WithField("count", len(tasks)).Info("tasks seeded")

	fmt.Printf("\nDomain ID: %s\nAPI key:   %s\n", dom.ID, dom.APIKey)
	fmt.Printf("\nTry:\n  corral --api-key %s project query --filter status:equals:active --sort budget:desc --format table\n", dom.APIKey)
	return nil
}

func sampleCategories() []client.CategoryRequest {
	return []client.CategoryRequest{
		{Name: "Infrastructure", Rank: 1},
		{Name: "Research", Rank: 2},
		{Name: "Operations", Rank: 3},
		{Name: "Outreach", Rank: 4},
	}
}

func sampleContacts() []client.ContactRequest {
	age := func(n int64) *int64 { return &n }
	return []client.ContactRequest{
		{FirstName: "Ada", LastName: "Okafor", Email: "ada.okafor@example.com", Age: age(34)},
		{FirstName: "Bruno", LastName: "Keller", Email: "bruno.keller@example.com", Age: age(41)},
		{FirstName: "Carmen", LastName: "Ito", Email: "carmen.ito@example.com", Age: age(29)},
		{FirstName: "Dmitri", LastName: "Sand", Email: "dmitri.sand@example.com"},
		{FirstName: "Elif", LastName: "Aydın", Email: "elif.aydin@example.com", Age: age(37)},
		{FirstName: "Farid", LastName: "Nasser", Email: "farid.nasser@example.com", Age: age(52)},
	}
}

func sampleProjects(n int, categories []client.Category, contacts []client.Contact) []client.ProjectRequest {
	names := []string{"Atlas", "Borealis", "Cascade", "Dunes", "Ember", "Fjord", "Gale", "Harbor", "Icefall", "Juniper"}
	statuses := []string{"draft", "active", "active", "done"}

	reqs := make([]client.ProjectRequest, 0, n)
	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		budget := float64(25000 * (i + 1))
		headcount := int64(2 + i%5)
		starts := time.Date(2026, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC)
		req := client.ProjectRequest{
			Name:      fmt.Sprintf("%s %d", name, i+1),
			Code:      fmt.Sprintf("%s-%03d", name[:3], i+1),
			Status:    statuses[i%len(statuses)],
			Budget:    &budget,
			Headcount: &headcount,
			StartsOn:  &starts,
		}
		if len(categories) > 0 {
			req.CategoryID = &categories[i%len(categories)].ID
		}
		if len(contacts) > 0 {
			req.LeadID = &contacts[i%len(contacts)].ID
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func sampleTasks(projects []client.Project, perProject int) []client.TaskRequest {
	titles := []string{"Kickoff review", "Draft budget", "Vendor shortlist", "Status report", "Retrospective"}

	reqs := make([]client.TaskRequest, 0, len(projects)*perProject)
	for i, p := range projects {
		for j := 0; j < perProject; j++ {
			due := time.Date(2026, time.Month(1+(i+j)%12), 15, 0, 0, 0, 0, time.UTC)
			reqs = append(reqs, client.TaskRequest{
				ProjectID: p.ID,
				Title:     titles[(i+j)%len(titles)],
				Done:      j%3 == 0,
				DueOn:     &due,
			})
		}
	}
	return reqs
}
