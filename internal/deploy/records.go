package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoDeploymentData is returned when a provider has no deployment data file
var ErrNoDeploymentData = errors.New("no deployment data")

// RecordsPath returns the deployment data file of provider
func RecordsPath(dir, provider string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_deployment_data.json", provider))
}

// SaveRecords writes the deployment data of provider and returns its path
func SaveRecords(dir, provider string, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create deployment directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode deployment data: %w", err)
	}

	path := RecordsPath(dir, provider)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write deployment data: %w", err)
	}
	return path, nil
}

// LoadRecords reads the deployment data of provider
func LoadRecords(dir, provider string) ([]Record, error) {
	path := RecordsPath(dir, provider)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNoDeploymentData, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment data: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse deployment data %s: %w", path, err)
	}
	return records, nil
}

// RemoveRecords deletes the deployment data file of provider
func RemoveRecords(dir, provider string) error {
	if err := os.Remove(RecordsPath(dir, provider)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove deployment data: %w", err)
	}
	return nil
}
