package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeploy_Records_SaveLoadRemove(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "deployments")
	records := []Record{
		{Provider: ProviderAWS, Region: "us-east-1", FunctionName: "bench", URL: "https://a.lambda-url.us-east-1.on.aws/"},
		{Provider: ProviderAWS, Region: "eu-west-1", FunctionName: "bench", URL: "https://b.lambda-url.eu-west-1.on.aws/"},
	}

	path, err := SaveRecords(dir, ProviderAWS, records)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "aws_deployment_data.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"functionName": "bench"`)

	loaded, err := LoadRecords(dir, ProviderAWS)
	require.NoError(t, err)
	require.Equal(t, records, loaded)

	require.NoError(t, RemoveRecords(dir, ProviderAWS))
	_, err = LoadRecords(dir, ProviderAWS)
	require.ErrorIs(t, err, ErrNoDeploymentData)

	require.NoError(t, RemoveRecords(dir, ProviderAWS))
}

func TestDeploy_Records_Corrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(RecordsPath(dir, ProviderGCP), []byte("not json"), 0644))
	_, err := LoadRecords(dir, ProviderGCP)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoDeploymentData)
}
