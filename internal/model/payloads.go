package model

import (
	"errors"
	"fmt"
)

// ResumeMatch is one scored candidate from the matching stage.
type ResumeMatch struct {
	ResumeID string  `json:"resume_id"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason,omitempty"`
}

// SelectionResult is the resume_selection stage payload: the ranked pool
// and the chosen base resume, plus the skill gaps that drive discovery.
type SelectionResult struct {
	Matches          []ResumeMatch `json:"matches"`
	SelectedID       string        `json:"selected_id"`
	SelectedScore    float64       `json:"selected_score"`
	MissingRequired  []string      `json:"missing_required,omitempty"`
	MissingPreferred []string      `json:"missing_preferred,omitempty"`
}

func (s *SelectionResult) Validate() error {
	if s.SelectedID == "" {
		return errors.New("selection missing selected_id")
	}
	if s.SelectedScore < 0 || s.SelectedScore > 1 {
		return fmt.Errorf("selection score %.2f out of range [0,1]", s.SelectedScore)
	}
	return nil
}

// MissingSkills returns required then preferred gaps, most critical first.
func (s *SelectionResult) MissingSkills() []string {
	out := make([]string, 0, len(s.MissingRequired)+len(s.MissingPreferred))
	out = append(out, s.MissingRequired...)
	out = append(out, s.MissingPreferred...)
	return out
}

// SectionChange describes one edit the tailoring stage made.
type SectionChange struct {
	Section string `json:"section"`
	Change  string `json:"change"`
}

// TailoredResume is the tailored_resume stage payload: the rewritten
// resume plus a human-readable diff against the base.
type TailoredResume struct {
	Resume       Resume          `json:"resume"`
	BaseResumeID string          `json:"base_resume_id"`
	Changes      []SectionChange `json:"changes,omitempty"`
	KeywordsUsed []string        `json:"keywords_used,omitempty"`
}

func (t *TailoredResume) Validate() error {
	if t.BaseResumeID == "" {
		return errors.New("tailored resume missing base_resume_id")
	}
	return t.Resume.Validate()
}

// QualityReview is the quality_review stage payload.
type QualityReview struct {
	OverallScore        float64  `json:"overall_score"` // 0-10
	InterviewLikelihood string   `json:"interview_likelihood,omitempty"`
	Strengths           []string `json:"strengths,omitempty"`
	Weaknesses          []string `json:"weaknesses,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
	KeywordCoverage     float64  `json:"keyword_coverage,omitempty"`
}

func (q *QualityReview) Validate() error {
	if q.OverallScore < 0 || q.OverallScore > 10 {
		return fmt.Errorf("review score %.1f out of range [0,10]", q.OverallScore)
	}
	return nil
}
