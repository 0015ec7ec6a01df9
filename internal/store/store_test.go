package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/dbpool"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 0)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base with a fresh test domain, cleaned up after
// the test.
func setupTestBase(t *testing.T) (store.Base, uuid.UUID) {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}
	ctx := context.Background()

	ds := store.NewDomainStore(base)
	dk, err := ds.CreateDomain(ctx, models.CreateDomainRequest{
		Name: fmt.Sprintf("test-domain-%s", uuid.NewString()[:8]),
	})
	if err != nil {
		t.Fatalf("creating test domain: %v", err)
	}
	domainID := dk.ID

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: audit, tasks, projects, contacts,
		// categories, domain.
		env.pool.Exec(cleanCtx, "DELETE FROM corral_audit_log WHERE domain_id = $1", domainID)                             //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM tasks WHERE project_id IN (SELECT id FROM projects WHERE domain_id = $1)", domainID) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM projects WHERE domain_id = $1", domainID)                                    //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM contacts WHERE domain_id = $1", domainID)                                    //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM categories WHERE domain_id = $1", domainID)                                  //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM domains WHERE id = $1", domainID)                                            //nolint:errcheck // best-effort cleanup
	})

	return base, domainID
}
