package deploy

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"serverless-bench/internal/config"
	"serverless-bench/internal/registry"
)

func newTestManager(t *testing.T) (*Manager, string, string) {
	t.Helper()
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "services.json")
	return NewManager(newTestLogger(), registryPath, dir), registryPath, dir
}

func TestDeploy_New(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	_, err := New(newTestLogger(), cfg, "azure", OperationDeploy)
	require.Error(t, err)

	_, err = New(newTestLogger(), cfg, ProviderFleek, OperationDeploy)
	require.Error(t, err)

	_, err = New(newTestLogger(), cfg, ProviderAWS, Operation("upgrade"))
	require.Error(t, err)

	cfg.Fleek = config.FleekConfig{TeamID: "t", SiteID: "s", SourceCodePath: "index.js", APIKey: "k", APIURL: config.DefaultFleekAPIURL}
	d, err := New(newTestLogger(), cfg, ProviderFleek, OperationDeploy)
	require.NoError(t, err)
	require.IsType(t, &FleekDeployer{}, d)
}

func TestDeploy_New_DeleteNeedsOnlyRecords(t *testing.T) {
	t.Parallel()

	m, registryPath, dir := newTestManager(t)
	records := []Record{{Provider: ProviderAWS, Region: "us-east-1", FunctionName: "prime-bench", URL: "https://use1.example/"}}
	_, err := SaveRecords(dir, ProviderAWS, records)
	require.NoError(t, err)
	reg := registry.Registry{}
	reg.Set(ProviderAWS, Endpoints(records))
	require.NoError(t, reg.Save(registryPath))

	cfg := config.Default()
	cfg.AWS = config.AWSConfig{}

	_, err = New(newTestLogger(), cfg, ProviderAWS, OperationDeploy)
	require.Error(t, err)

	d, err := New(newTestLogger(), cfg, ProviderAWS, OperationDelete)
	require.NoError(t, err)
	aws, ok := d.(*AWSDeployer)
	require.True(t, ok)

	client := &fakeLambda{region: "us-east-1"}
	aws.newClient = func(ctx context.Context, region string) (LambdaAPI, error) {
		return client, nil
	}

	require.NoError(t, m.Delete(context.Background(), d))
	require.Equal(t, []string{"prime-bench"}, client.deleted)

	_, err = LoadRecords(dir, ProviderAWS)
	require.ErrorIs(t, err, ErrNoDeploymentData)
	reg, err = registry.Load(registryPath)
	require.NoError(t, err)
	require.Zero(t, reg.Len())
}

func TestDeploy_New_DeleteRequiresCredentials(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	_, err := New(newTestLogger(), cfg, ProviderDigitalOcean, OperationDelete)
	require.Error(t, err)
	_, err = New(newTestLogger(), cfg, ProviderGCP, OperationDelete)
	require.Error(t, err)

	cfg.DigitalOcean.APIToken = "token"
	cfg.GCP.ProjectID = "bench-project"
	_, err = New(newTestLogger(), cfg, ProviderDigitalOcean, OperationDelete)
	require.NoError(t, err)
	_, err = New(newTestLogger(), cfg, ProviderGCP, OperationDelete)
	require.NoError(t, err)
}

func TestDeploy_Manager_DeployUpdatesRegistryAndRecords(t *testing.T) {
	t.Parallel()

	m, registryPath, dir := newTestManager(t)

	existing := registry.Registry{}
	existing.Set("gcp", []registry.Endpoint{{Name: "us-central1", URL: "https://gcp.example/"}})
	existing.Set("aws", []registry.Endpoint{{Name: "stale", URL: "https://stale.example/"}})
	require.NoError(t, existing.Save(registryPath))

	d := &fakeDeployer{name: ProviderAWS, records: []Record{
		{Provider: ProviderAWS, Region: "us-east-1", FunctionName: "bench", URL: "https://use1.example/"},
		{Provider: ProviderAWS, Region: "eu-west-1", FunctionName: "bench", URL: "https://euw1.example/"},
	}}
	records, err := m.Deploy(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, d.records, records)

	reg, err := registry.Load(registryPath)
	require.NoError(t, err)
	require.Equal(t, []registry.Endpoint{
		{Name: "us-east-1", URL: "https://use1.example/"},
		{Name: "eu-west-1", URL: "https://euw1.example/"},
	}, reg["aws"].Regions)
	require.Equal(t, existing["gcp"], reg["gcp"])

	saved, err := LoadRecords(dir, ProviderAWS)
	require.NoError(t, err)
	require.Equal(t, d.records, saved)
}

func TestDeploy_Manager_DeployNothingLeavesRegistry(t *testing.T) {
	t.Parallel()

	m, registryPath, dir := newTestManager(t)
	existing := registry.Registry{}
	existing.Set("aws", []registry.Endpoint{{Name: "us-east-1", URL: "https://keep.example/"}})
	require.NoError(t, existing.Save(registryPath))

	records, err := m.Deploy(context.Background(), &fakeDeployer{name: ProviderAWS})
	require.NoError(t, err)
	require.Empty(t, records)

	reg, err := registry.Load(registryPath)
	require.NoError(t, err)
	require.Equal(t, existing, reg)

	_, err = LoadRecords(dir, ProviderAWS)
	require.ErrorIs(t, err, ErrNoDeploymentData)
}

func TestDeploy_Manager_DeployError(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)
	boom := errors.New("zip failed")
	_, err := m.Deploy(context.Background(), &fakeDeployer{name: ProviderAWS, deployErr: boom})
	require.ErrorIs(t, err, boom)
}

func TestDeploy_Manager_Delete(t *testing.T) {
	t.Parallel()

	m, registryPath, dir := newTestManager(t)
	records := []Record{{Provider: ProviderGCP, Region: "us-central1", FunctionName: "bench", URL: "https://gcp.example/"}}
	_, err := SaveRecords(dir, ProviderGCP, records)
	require.NoError(t, err)

	reg := registry.Registry{}
	reg.Set(ProviderGCP, Endpoints(records))
	reg.Set(ProviderAWS, []registry.Endpoint{{Name: "us-east-1", URL: "https://aws.example/"}})
	require.NoError(t, reg.Save(registryPath))

	// Per-record failures do not keep the data file
	d := &fakeDeployer{name: ProviderGCP, deleteErr: errors.New("1 deletion(s) failed")}
	require.NoError(t, m.Delete(context.Background(), d))
	require.Equal(t, records, d.deleted)

	_, err = LoadRecords(dir, ProviderGCP)
	require.ErrorIs(t, err, ErrNoDeploymentData)

	reg, err = registry.Load(registryPath)
	require.NoError(t, err)
	require.Equal(t, []string{ProviderAWS}, reg.Names())
}

func TestDeploy_Manager_DeleteWithoutData(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)
	d := &fakeDeployer{name: ProviderDigitalOcean}
	require.NoError(t, m.Delete(context.Background(), d))
	require.Nil(t, d.deleted)
}

func TestDeploy_Manager_DeleteUnsupportedKeepsData(t *testing.T) {
	t.Parallel()

	m, _, dir := newTestManager(t)
	_, err := SaveRecords(dir, ProviderFleek, []Record{{Provider: ProviderFleek, Region: "global"}})
	require.NoError(t, err)

	err = m.Delete(context.Background(), &fakeDeployer{name: ProviderFleek, deleteErr: ErrDeleteUnsupported})
	require.ErrorIs(t, err, ErrDeleteUnsupported)

	_, err = LoadRecords(dir, ProviderFleek)
	require.NoError(t, err)
}
