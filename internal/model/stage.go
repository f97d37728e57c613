// Package model defines the domain types flowing through the tailoring
// pipeline and the payload schema attached to each cache stage.
package model

import "fmt"

// StageKind identifies one pipeline stage. Each stage owns a namespace in
// the artifact store and exactly one payload schema.
type StageKind string

const (
	StageJobAnalysis     StageKind = "job_analysis"
	StageResumeSelection StageKind = "resume_selection"
	StageTailoredResume  StageKind = "tailored_resume"
	StageQualityReview   StageKind = "quality_review"
)

// Stages lists all stages in pipeline order.
var Stages = []StageKind{
	StageJobAnalysis,
	StageResumeSelection,
	StageTailoredResume,
	StageQualityReview,
}

// Valid reports whether s is a known stage.
func (s StageKind) Valid() bool {
	switch s {
	case StageJobAnalysis, StageResumeSelection, StageTailoredResume, StageQualityReview:
		return true
	}
	return false
}

func (s StageKind) String() string {
	return string(s)
}

// ParseStage converts a user-supplied stage name, e.g. from a CLI flag.
func ParseStage(name string) (StageKind, error) {
	s := StageKind(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage %q (expected one of %v)", name, Stages)
	}
	return s, nil
}
