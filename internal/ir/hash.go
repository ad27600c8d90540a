package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "schedcheck/program/v1"
	DomainReport  = "schedcheck/report/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramDigest computes a content-addressed digest of a program. Source
// line numbers are excluded, so reformatting a file keeps its digest.
func ProgramDigest(p *Program) (string, error) {
	body := make([]any, len(p.Body))
	for i, st := range p.Body {
		args := make([]any, len(st.Args))
		for j, a := range st.Args {
			if a.IsConst {
				args[j] = map[string]any{"const": a.Const}
			} else {
				args[j] = map[string]any{"ref": a.Ref}
			}
		}
		body[i] = map[string]any{"let": st.Let, "op": st.Op, "args": args}
	}
	params := p.Params
	if params == nil {
		params = []string{}
	}

	canonical, err := MarshalCanonical(map[string]any{
		"name":   p.Name,
		"params": params,
		"body":   body,
	})
	if err != nil {
		return "", fmt.Errorf("ProgramDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// MustProgramDigest is like ProgramDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramDigest(p *Program) string {
	d, err := ProgramDigest(p)
	if err != nil {
		panic(err)
	}
	return d
}

// ReportDigest identifies a verification outcome: the program it was computed
// for and its hazards in report order. Two runs with equal digests found
// exactly the same hazards.
func ReportDigest(programDigest string, hazards []Hazard) (string, error) {
	if hazards == nil {
		hazards = []Hazard{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"program": programDigest,
		"hazards": hazards,
		"version": VerifierVersion,
	})
	if err != nil {
		return "", fmt.Errorf("ReportDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainReport, canonical), nil
}
