// Package policy loads per-team budget thresholds from an HCL policy file.
//
// A policy file looks like:
//
//	defaults {
//	  warning_limit = 80
//	  maximum_limit = 100
//	}
//
//	budget "platform" {
//	  warning_limit = 5000
//	  maximum_limit = 6000
//	}
package policy

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vismaya/demandops/internal/model"
)

type policyFile struct {
	Defaults *limitsBlock  `hcl:"defaults,block"`
	Budgets  []budgetBlock `hcl:"budget,block"`
}

type limitsBlock struct {
	WarningLimit float64 `hcl:"warning_limit"`
	MaximumLimit float64 `hcl:"maximum_limit"`
}

type budgetBlock struct {
	Name         string  `hcl:"name,label"`
	WarningLimit float64 `hcl:"warning_limit"`
	MaximumLimit float64 `hcl:"maximum_limit"`
}

// Set holds the decoded budget policy: fallback thresholds plus any per-team
// overrides.
type Set struct {
	Defaults model.BudgetThresholds
	Teams    map[string]model.BudgetThresholds
}

// ThresholdsFor returns the team's thresholds, falling back to the defaults
// when the team has no override.
func (s *Set) ThresholdsFor(team string) model.BudgetThresholds {
	if t, ok := s.Teams[team]; ok {
		return t
	}
	return s.Defaults
}

// TeamNames returns the teams with explicit overrides.
func (s *Set) TeamNames() []string {
	names := make([]string, 0, len(s.Teams))
	for name := range s.Teams {
		names = append(names, name)
	}
	return names
}

// LoadFile reads and decodes a policy file from disk.
func LoadFile(path string, fallback model.BudgetThresholds) (*Set, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return Load(src, path, fallback)
}

// Load decodes policy source. The fallback thresholds apply when the file has
// no defaults block. Every threshold pair in the file must be well formed.
func Load(src []byte, filename string, fallback model.BudgetThresholds) (*Set, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}

	var decoded policyFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %s", filename, diags.Error())
	}

	set := &Set{
		Defaults: fallback,
		Teams:    make(map[string]model.BudgetThresholds, len(decoded.Budgets)),
	}

	if decoded.Defaults != nil {
		set.Defaults = model.BudgetThresholds{
			WarningLimit: decoded.Defaults.WarningLimit,
			MaximumLimit: decoded.Defaults.MaximumLimit,
		}
	}
	if err := set.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("defaults block: %w", err)
	}

	for _, b := range decoded.Budgets {
		if _, dup := set.Teams[b.Name]; dup {
			return nil, fmt.Errorf("duplicate budget block %q", b.Name)
		}
		t := model.BudgetThresholds{
			WarningLimit: b.WarningLimit,
			MaximumLimit: b.MaximumLimit,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("budget block %q: %w", b.Name, err)
		}
		set.Teams[b.Name] = t
	}

	return set, nil
}
