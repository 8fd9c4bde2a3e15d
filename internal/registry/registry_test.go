package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Load_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	reg, err := Load(filepath.Join(t.TempDir(), "services.json"))
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.Zero(t, reg.Len())
}

func TestRegistry_Load_InvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestRegistry_Load_ServicesFileFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "aws": {"regions": [{"name": "us-east-1", "url": "https://abc.lambda-url.us-east-1.on.aws/"}]},
  "gcp": {"regions": [{"name": "us-central1", "url": "https://us-central1-p.cloudfunctions.net/f"}]}
}`), 0644))

	reg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"aws", "gcp"}, reg.Names())
	require.Equal(t, "https://abc.lambda-url.us-east-1.on.aws/", reg["aws"].Regions[0].URL)
}

func TestRegistry_SetSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "services.json")
	reg := Registry{}
	reg.Set("do", []Endpoint{{Name: "nyc1", URL: "https://nyc1.example/fn"}, {Name: "sfo3", URL: "https://sfo3.example/fn"}})
	reg.Set("aws", []Endpoint{{Name: "us-east-1", URL: "https://aws.example/"}})
	require.NoError(t, reg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, reg, loaded)
	require.Equal(t, []string{"aws", "do"}, loaded.Names())
	require.Equal(t, 3, loaded.Len())

	loaded.Set("do", []Endpoint{{Name: "ams3", URL: "https://ams3.example/fn"}})
	require.Len(t, loaded["do"].Regions, 1)
}

func TestRegistry_Filter(t *testing.T) {
	t.Parallel()

	reg := Registry{
		"aws": {Regions: []Endpoint{{Name: "us-east-1"}}},
		"gcp": {Regions: []Endpoint{{Name: "us-central1"}}},
	}

	all, err := reg.Filter(nil)
	require.NoError(t, err)
	require.Equal(t, reg, all)

	only, err := reg.Filter([]string{"gcp"})
	require.NoError(t, err)
	require.Equal(t, []string{"gcp"}, only.Names())

	_, err = reg.Filter([]string{"azure"})
	require.Error(t, err)
}
