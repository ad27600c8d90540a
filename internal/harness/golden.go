package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// Snapshot returns the canonical JSON form of a result used for golden
// comparison. Digests and run ids are left out so the snapshot does not
// change with the verifier version or the run id generator.
func Snapshot(result *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario": result.Scenario,
		"outcome":  result.Outcome,
	}
	if result.Program != nil {
		snap["program"] = result.Program.Name
	}
	if code := schedule.ErrorCode(result.Err); code != "" {
		snap["error_code"] = code
	}
	if result.Report == nil {
		if result.Err != nil {
			snap["error"] = result.Err.Error()
		}
		return ir.MarshalCanonical(snap)
	}

	r := result.Report
	streams := make([]any, len(r.Streams))
	for i, sc := range r.Streams {
		streams[i] = map[string]any{
			"stream":       sc.Stream,
			"instructions": sc.Instructions,
		}
	}
	snap["instructions"] = r.Instructions
	snap["streams"] = streams
	snap["events"] = r.Events
	snap["waits"] = r.Waits
	snap["hazards"] = r.Hazards
	if len(r.Warnings) > 0 {
		warnings := make([]any, len(r.Warnings))
		for i, w := range r.Warnings {
			warnings[i] = map[string]any{
				"code":     string(w.Code),
				"event_id": w.EventID,
				"position": w.Position,
			}
		}
		snap["warnings"] = warnings
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario could not be run.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's snapshot against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
