package deploy

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fakeDeployer returns canned records and remembers what it was asked to delete
type fakeDeployer struct {
	name      string
	records   []Record
	deployErr error
	deleteErr error
	deleted   []Record
}

func (f *fakeDeployer) Name() string { return f.name }

func (f *fakeDeployer) Deploy(ctx context.Context) ([]Record, error) {
	return f.records, f.deployErr
}

func (f *fakeDeployer) Delete(ctx context.Context, records []Record) error {
	f.deleted = records
	return f.deleteErr
}
