package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

// QualityReviewer scores a tailored resume against the job it targets.
type QualityReviewer struct {
	base
}

func NewQualityReviewer(p provider.Provider, cfg *industry.Config, obs *observe.Observer) *QualityReviewer {
	return &QualityReviewer{base{name: "QualityReviewer", provider: p, config: cfg, obs: obs}}
}

func (r *QualityReviewer) Review(ctx context.Context, analysis *model.JobAnalysis, tailored *model.TailoredResume) (*model.QualityReview, error) {
	r.obs.Log().Info().Str("base", tailored.BaseResumeID).Msg("reviewing tailored resume")

	resumeJSON, err := json.Marshal(tailored.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tailored resume: %w", err)
	}

	system := fmt.Sprintf(`You are a hiring manager in the %s industry reviewing a tailored resume.
Respond with a single JSON object: {"overall_score": 0-10, "interview_likelihood": "low|medium|high",
"strengths": ["..."], "weaknesses": ["..."], "suggestions": ["..."], "keyword_coverage": 0.0-1.0}.`,
		r.config.DisplayName)

	prompt := fmt.Sprintf(`TARGET JOB: %s (%s)
Required skills: %s
Critical keywords: %s

TAILORED RESUME:
%s`,
		analysis.RoleType, analysis.Seniority,
		joinHead(analysis.RequiredSkills, 10),
		joinHead(analysis.CriticalKeywords, 10),
		resumeJSON)

	reply, err := r.complete(ctx, system, prompt, 2048, 0.4)
	if err != nil {
		return nil, err
	}
	body, err := extractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("review reply unparsable: %w", err)
	}

	var review model.QualityReview
	if err := json.Unmarshal([]byte(body), &review); err != nil {
		return nil, fmt.Errorf("failed to decode quality review: %w", err)
	}
	return &review, nil
}
