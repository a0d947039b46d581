// Package scenario declares the simulation scenarios a learner can run: each one
// is an endpoint path plus the descriptor list that drives its form.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eduwrench/simclient/sim"
)

// Scenario parameterizes one generic session controller.
type Scenario struct {
	Name       string                    `yaml:"name"`
	Title      string                    `yaml:"title,omitempty"`
	Path       string                    `yaml:"path"`
	Parameters []sim.ParameterDescriptor `yaml:"parameters"`
}

// Catalog is the top-level scenario configuration.
// Loaded from YAML via LoadCatalog(path).
type Catalog struct {
	Version   string     `yaml:"version"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Validate checks the scenario's path and descriptors.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	if !strings.HasPrefix(s.Path, "/") {
		return fmt.Errorf("scenario %q: path %q must start with /", s.Name, s.Path)
	}
	if err := sim.ValidateDescriptors(s.Parameters); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// Validate checks every scenario and rejects duplicate names.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenarios[%d]: duplicate scenario %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Lookup returns the scenario with the given name.
func (c *Catalog) Lookup(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Names returns scenario names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// LoadCatalog reads and validates a YAML scenario catalog.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario catalog: %w", err)
	}
	var cat Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cat); err != nil {
		return nil, fmt.Errorf("parsing scenario catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}
