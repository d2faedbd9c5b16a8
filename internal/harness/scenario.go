package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one regression scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect is an optional CUE dialect file. Relative paths are resolved
	// against the scenario file's directory.
	Dialect string `yaml:"dialect,omitempty"`

	// Steps run in order against one store.
	Steps []Step `yaml:"steps"`
}

// Step is a single operation. Which fields apply depends on Op.
type Step struct {
	Op      string  `yaml:"op"`
	Name    string  `yaml:"name,omitempty"`
	Stable  string  `yaml:"stable,omitempty"`
	Table   string  `yaml:"table,omitempty"`
	Kind    string  `yaml:"kind,omitempty"`
	Value   string  `yaml:"value,omitempty"`
	Tags    string  `yaml:"tags,omitempty"`
	Field   string  `yaml:"field,omitempty"`
	Pattern string  `yaml:"pattern,omitempty"`
	Expect  *Expect `yaml:"expect,omitempty"`
}

// Expect describes the outcome of a step. Unset fields are not checked.
type Expect struct {
	// Rows is the expected result count.
	Rows *int `yaml:"rows,omitempty"`

	// Values are the expected results in order (decoded names or values).
	Values []string `yaml:"values,omitempty"`

	// Error is the expected error code. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Operation constants.
const (
	OpCreateStable = "create_stable"
	OpCreateTable  = "create_table"
	OpInsert       = "insert"
	OpSelectEq     = "select_eq"
	OpSelectLike   = "select_like"
	OpShowTables   = "show_tables"
	OpSelectTags   = "select_tags"
	OpDecode       = "decode"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Dialect != "" && !filepath.IsAbs(scenario.Dialect) {
		scenario.Dialect = filepath.Join(filepath.Dir(path), scenario.Dialect)
	}
	if scenario.Dialect != "" {
		if _, err := os.Stat(scenario.Dialect); err != nil {
			return nil, fmt.Errorf("invalid scenario: dialect file not found: %s", scenario.Dialect)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks the fields each operation needs.
func validateStep(index int, st *Step) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, st.Op)
		}
		return nil
	}

	var err error
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpCreateStable:
		err = need("name", st.Name)
	case OpCreateTable:
		err = need("name", st.Name)
	case OpInsert, OpSelectEq:
		if err = need("table", st.Table); err == nil {
			err = need("value", st.Value)
		}
	case OpSelectLike:
		if err = need("pattern", st.Pattern); err != nil {
			break
		}
		switch st.Field {
		case "name":
		case "value":
			err = need("table", st.Table)
		default:
			err = fmt.Errorf("steps[%d]: field must be name or value, got %q", index, st.Field)
		}
	case OpShowTables:
	case OpSelectTags:
		err = need("table", st.Table)
	case OpDecode:
		err = need("value", st.Value)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	if err != nil {
		return err
	}

	if st.Kind != "" && st.Op != OpInsert {
		return fmt.Errorf("steps[%d]: kind only applies to insert", index)
	}
	if st.Kind != "" && st.Kind != "nchar" && st.Kind != "binary" {
		return fmt.Errorf("steps[%d]: kind must be nchar or binary, got %q", index, st.Kind)
	}
	if st.Expect != nil && st.Expect.Rows != nil && *st.Expect.Rows < 0 {
		return fmt.Errorf("steps[%d].expect: rows must be non-negative", index)
	}
	return nil
}
