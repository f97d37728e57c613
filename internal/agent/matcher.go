package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

// ResumeMatcher scores each candidate resume against an analyzed posting
// and picks the best base for tailoring.
type ResumeMatcher struct {
	base
}

func NewResumeMatcher(p provider.Provider, cfg *industry.Config, obs *observe.Observer) *ResumeMatcher {
	return &ResumeMatcher{base{name: "ResumeMatcher", provider: p, config: cfg, obs: obs}}
}

// Select scores every candidate, ranks them, and computes the skill gaps
// of the winner. Candidates arrive in arbitrary order; the result is
// deterministic given the same pool.
func (m *ResumeMatcher) Select(ctx context.Context, analysis *model.JobAnalysis, candidates []model.Candidate) (*model.SelectionResult, error) {
	m.obs.Log().Info().Int("pool", len(candidates)).Msg("matching resumes to job")

	matches := make([]model.ResumeMatch, 0, len(candidates))
	for _, cand := range candidates {
		score, reason, err := m.score(ctx, analysis, cand)
		if err != nil {
			return nil, err
		}
		matches = append(matches, model.ResumeMatch{ResumeID: cand.ID, Score: score, Reason: reason})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ResumeID < matches[j].ResumeID
	})

	best := matches[0]
	var bestResume model.Resume
	for _, cand := range candidates {
		if cand.ID == best.ResumeID {
			bestResume = cand.Resume
			break
		}
	}

	missingRequired, missingPreferred := SkillGaps(analysis, &bestResume)
	return &model.SelectionResult{
		Matches:          matches,
		SelectedID:       best.ResumeID,
		SelectedScore:    best.Score,
		MissingRequired:  missingRequired,
		MissingPreferred: missingPreferred,
	}, nil
}

func (m *ResumeMatcher) score(ctx context.Context, analysis *model.JobAnalysis, cand model.Candidate) (float64, string, error) {
	system := `You are an expert resume screener. Score how well a resume matches a job.
Respond with a single JSON object: {"score": 0.0-1.0, "reason": "one sentence"}.`

	resumeJSON, err := json.Marshal(cand.Resume)
	if err != nil {
		return 0, "", fmt.Errorf("failed to encode resume %s: %w", cand.ID, err)
	}

	prompt := fmt.Sprintf(`JOB: %s (%s)
Required skills: %s
Key responsibilities: %s

RESUME (%s):
%s`,
		analysis.RoleType, analysis.Seniority,
		joinHead(analysis.RequiredSkills, 10),
		joinHead(analysis.KeyResponsibilities, 5),
		cand.ID, resumeJSON)

	reply, err := m.complete(ctx, system, prompt, 1024, 0.2)
	if err != nil {
		return 0, "", err
	}
	body, err := extractJSON(reply)
	if err != nil {
		return 0, "", fmt.Errorf("match reply for %s unparsable: %w", cand.ID, err)
	}

	var out struct {
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return 0, "", fmt.Errorf("failed to decode match score for %s: %w", cand.ID, err)
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 1 {
		out.Score = 1
	}
	return out.Score, out.Reason, nil
}

// SkillGaps computes which of the job's required and preferred skills the
// resume does not declare anywhere. Deterministic: no model call.
func SkillGaps(analysis *model.JobAnalysis, resume *model.Resume) (missingRequired, missingPreferred []string) {
	declared := resume.DeclaredSkills()

	for _, skill := range analysis.RequiredSkills {
		if !declared[strings.ToLower(strings.TrimSpace(skill))] {
			missingRequired = append(missingRequired, skill)
		}
	}
	for _, skill := range analysis.PreferredSkills {
		if !declared[strings.ToLower(strings.TrimSpace(skill))] {
			missingPreferred = append(missingPreferred, skill)
		}
	}

	// Keep the dialogue bounded: top gaps only, most critical first.
	if len(missingRequired) > 10 {
		missingRequired = missingRequired[:10]
	}
	if len(missingPreferred) > 5 {
		missingPreferred = missingPreferred[:5]
	}
	return missingRequired, missingPreferred
}
