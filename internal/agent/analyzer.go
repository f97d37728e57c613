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

// JobAnalyzer extracts structured requirements from a job posting.
type JobAnalyzer struct {
	base
}

func NewJobAnalyzer(p provider.Provider, cfg *industry.Config, obs *observe.Observer) *JobAnalyzer {
	return &JobAnalyzer{base{name: "JobAnalyzer", provider: p, config: cfg, obs: obs}}
}

func (a *JobAnalyzer) Analyze(ctx context.Context, posting model.JobPosting) (*model.JobAnalysis, error) {
	a.obs.Log().Info().Str("company", posting.Company).Str("title", posting.Title).Msg("analyzing job posting")

	system := fmt.Sprintf(`You are an expert job posting analyst for the %s industry.
Extract structured requirements from postings. Respond with a single JSON object and nothing else.
Industry priority keywords: %s`,
		a.config.DisplayName, joinHead(a.config.PriorityKeywords, 15))

	prompt := fmt.Sprintf(`Analyze this job posting and return JSON with fields:
role_type, seniority, industry, required_skills, preferred_skills, technical_skills,
soft_skills, critical_keywords, secondary_keywords, education_requirements,
certifications, years_experience, key_responsibilities, culture_keywords,
confidence_score (0.0-1.0).

JOB TITLE: %s
COMPANY: %s

JOB DESCRIPTION:
%s`, posting.Title, posting.Company, posting.Description)

	// Low temperature: extraction should be as consistent as possible.
	reply, err := a.complete(ctx, system, prompt, 4096, 0.3)
	if err != nil {
		return nil, err
	}

	body, err := extractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("job analysis reply unparsable: %w", err)
	}

	var analysis model.JobAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode job analysis: %w", err)
	}
	if analysis.Industry == "" {
		analysis.Industry = a.config.Industry
	}
	return &analysis, nil
}
