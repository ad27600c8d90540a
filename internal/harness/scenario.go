package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path of the program file. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	Program string `yaml:"program"`

	// RemoveEvents lists event ids whose add_event and wait_event statements
	// are stripped before verification.
	RemoveEvents []int64 `yaml:"remove_events,omitempty"`

	// Expect is the required outcome.
	Expect Expectation `yaml:"expect"`

	// Assertions are additional checks on the report.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expectation specifies the verification outcome.
type Expectation struct {
	// Result is one of the Outcome values.
	Result string `yaml:"result"`

	// Hazards is the exact hazard list, by binding name, in report order.
	// Only allowed when Result is execution_order.
	Hazards []HazardEdge `yaml:"hazards,omitempty"`

	// EventID is the offending event id. Only allowed when Result is
	// unknown_event.
	EventID *int64 `yaml:"event_id,omitempty"`
}

// HazardEdge names a dependency edge by binding names.
type HazardEdge struct {
	Producer string `yaml:"producer"`
	Consumer string `yaml:"consumer"`
}

func (e HazardEdge) String() string {
	return e.Producer + " -> " + e.Consumer
}

// Assertion validates one property of the report.
type Assertion struct {
	// Type specifies the assertion type (see package doc).
	Type string `yaml:"type"`

	// Count is the expected number (hazard_count, stream_instructions).
	Count int `yaml:"count,omitempty"`

	// Stream is "device:stream" or "default" (stream_instructions).
	Stream string `yaml:"stream,omitempty"`

	// Code is the warning code (warning).
	Code string `yaml:"code,omitempty"`

	// EventID narrows a warning assertion to one event id.
	EventID *int64 `yaml:"event_id,omitempty"`

	// Producer and Consumer are binding names (depends_on, edge_covered).
	Producer string `yaml:"producer,omitempty"`
	Consumer string `yaml:"consumer,omitempty"`
}

// Assertion type constants.
const (
	AssertHazardCount        = "hazard_count"
	AssertStreamInstructions = "stream_instructions"
	AssertWarning            = "warning"
	AssertNoWarnings         = "no_warnings"
	AssertDependsOn          = "depends_on"
	AssertEdgeCovered        = "edge_covered"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "remove_event:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
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
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}

	for i, id := range s.RemoveEvents {
		if id < 0 {
			return fmt.Errorf("remove_events[%d]: event id must be non-negative, got %d", i, id)
		}
	}

	if !slices.Contains(Outcomes, s.Expect.Result) {
		return fmt.Errorf("expect.result must be one of %v, got %q", Outcomes, s.Expect.Result)
	}
	if len(s.Expect.Hazards) > 0 && s.Expect.Result != OutcomeExecutionOrder {
		return fmt.Errorf("expect.hazards requires result %q", OutcomeExecutionOrder)
	}
	for i, h := range s.Expect.Hazards {
		if h.Producer == "" || h.Consumer == "" {
			return fmt.Errorf("expect.hazards[%d]: producer and consumer are required", i)
		}
	}
	if s.Expect.EventID != nil && s.Expect.Result != OutcomeUnknownEvent {
		return fmt.Errorf("expect.event_id requires result %q", OutcomeUnknownEvent)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertHazardCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for hazard_count", index)
		}
	case AssertStreamInstructions:
		if a.Stream == "" {
			return fmt.Errorf("assertions[%d]: stream is required for stream_instructions", index)
		}
		if _, err := parseStream(a.Stream); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertWarning:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for warning", index)
		}
	case AssertNoWarnings:
	case AssertDependsOn, AssertEdgeCovered:
		if a.Producer == "" || a.Consumer == "" {
			return fmt.Errorf("assertions[%d]: producer and consumer are required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted by path.
// A non-empty filter is a glob matched against each file's base name
// without extension. Files under a "golden" directory are skipped.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}
