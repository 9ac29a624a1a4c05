package e2e_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cocrafter/docstore"
	"github.com/cocrafter/docstore/blob/filesystem"
	"github.com/cocrafter/docstore/database/sqlite"
	docstorehttp "github.com/cocrafter/docstore/http"
)

// testServer wires a full stack (sqlite metadata, filesystem blobs, service,
// HTTP handler) and serves it in-process.
type testServer struct {
	URL     string
	Service *docstore.Service
	Blobs   *filesystem.Store
	DataDir string
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	tables := docstore.Tables{Folders: "docstore_folders", Documents: "docstore_documents"}
	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))

	dataDir := t.TempDir()
	root, err := os.OpenRoot(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	blobs := filesystem.NewStore(root)

	service, err := docstore.NewService(db.GetRepo(), blobs, docstore.ServiceConfig{
		CleanupTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	handler := docstorehttp.NewHandler(&docstorehttp.HandlerConfig{}, service)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return &testServer{
		URL:     server.URL,
		Service: service,
		Blobs:   blobs,
		DataDir: dataDir,
	}
}
