package model

import "github.com/enn-tee/agentic-job-search/internal/fingerprint"

// Candidate is one base resume offered to the selection stage: a stable
// identifier, the structured resume, and a fingerprint of the source
// content. The fingerprint feeds the selection and tailoring cache keys,
// so editing a base resume on disk invalidates everything downstream.
type Candidate struct {
	ID          string
	Resume      Resume
	Fingerprint fingerprint.Fingerprint
}
