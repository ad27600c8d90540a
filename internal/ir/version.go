package ir

// Version constants for IR schema and verifier.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// VerifierVersion is the schedcheck verifier version.
	VerifierVersion = "0.1.0"
)
