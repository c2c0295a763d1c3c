//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idgrid/user-service/internal/testutil"
)

// TestMain boots one shared MongoDB container for every integration test
// in this package. Starting a container per test would cost 30-40s each;
// sharing one keeps the whole suite near that figure.
func TestMain(m *testing.M) {
	os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
}

func getSharedContainerURI() string {
	return testutil.GetSharedContainerURI()
}

// sanitizeDBName turns a test name into a database name unique to the
// running test, keeping tests isolated inside the shared container.
func sanitizeDBName(testName string) string {
	return testutil.SanitizeDBName(testName)
}

// setupTestDBFromSharedContainer opens a connection to the shared
// container under a database owned by the calling test.
func setupTestDBFromSharedContainer(t *testing.T) *MongoDB {
	db, err := NewMongoDB(getSharedContainerURI(), sanitizeDBName(t.Name()))
	require.NoError(t, err)
	return db
}
