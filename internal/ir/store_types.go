package ir

// Run status values recorded in the run history.
const (
	RunStatusPassed  = "passed"
	RunStatusHazards = "hazards"
	RunStatusError   = "error"
)

// RunRecord represents one recorded verification run.
type RunRecord struct {
	ID               string   `json:"id"`
	Seq              int64    `json:"seq"` // Assigned by the store, monotonic
	ProgramName      string   `json:"program_name"`
	ProgramDigest    string   `json:"program_digest"`
	Status           string   `json:"status"`
	ErrorCode        string   `json:"error_code,omitempty"`
	Message          string   `json:"message,omitempty"`
	InstructionCount int      `json:"instruction_count"`
	WarningCount     int      `json:"warning_count"`
	VerifierVersion  string   `json:"verifier_version"`
	Hazards          []Hazard `json:"hazards,omitempty"`
}
