package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/database/postgres"
)

var (
	testDSN     string
	testDSNOnce sync.Once
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("%x", n.Int64())
}

// getSharedTestDSN starts one postgres container for the whole test run.
// Tests isolate themselves with unique table names instead of separate
// containers.
func getSharedTestDSN(t *testing.T) string {
	t.Helper()

	testDSNOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			if termErr := testcontainers.TerminateContainer(pgContainer); termErr != nil {
				t.Logf("failed to terminate container: %s", termErr)
			}
			t.Fatalf("failed to get connection string: %v", err)
		}

		testDSN = connectionStr
	})

	return testDSN
}

// setupRepo connects to the shared container with unique table names,
// migrates them and returns the repo.
func setupRepo(t *testing.T) docstore.MetadataRepo {
	t.Helper()
	ctx := context.Background()

	suffix := getRandomString(t)
	tables := docstore.Tables{
		Folders:   fmt.Sprintf("folders_%s", suffix),
		Documents: fmt.Sprintf("documents_%s", suffix),
	}

	db, err := postgres.Connect(ctx, getSharedTestDSN(t), tables)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Validate(ctx))

	return db.GetRepo()
}
