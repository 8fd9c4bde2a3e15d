// Package registry keeps the list of deployed endpoints per service.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// DefaultFile is the registry file used when none is configured
const DefaultFile = "services.json"

// Endpoint is a single regional deployment of a service
type Endpoint struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Service groups the regional endpoints of one provider
type Service struct {
	Regions []Endpoint `json:"regions"`
}

// Registry maps a service name to its endpoints
type Registry map[string]Service

// Load reads a registry from path. A missing file yields an empty registry.
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	reg := Registry{}
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", path, err)
	}
	return reg, nil
}

// Save writes the registry to path
func (r Registry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Set replaces the endpoints of a service
func (r Registry) Set(service string, endpoints []Endpoint) {
	r[service] = Service{Regions: append([]Endpoint(nil), endpoints...)}
}

// Names returns the service names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns a registry restricted to the given services.
// An empty list returns the registry unchanged.
func (r Registry) Filter(services []string) (Registry, error) {
	if len(services) == 0 {
		return r, nil
	}
	out := Registry{}
	for _, name := range services {
		svc, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("service %q not found in registry", name)
		}
		out[name] = svc
	}
	return out, nil
}

// Len returns the total number of endpoints across all services
func (r Registry) Len() int {
	n := 0
	for _, svc := range r {
		n += len(svc.Regions)
	}
	return n
}
