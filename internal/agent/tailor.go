package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

// Tailor rewrites a base resume for a specific job, folding in any
// bullets discovered during the skill dialogue.
type Tailor struct {
	base
}

func NewTailor(p provider.Provider, cfg *industry.Config, obs *observe.Observer) *Tailor {
	return &Tailor{base{name: "Tailor", provider: p, config: cfg, obs: obs}}
}

// TailorResume produces the tailored resume payload. discoveredBullets
// come from the skill-discovery session and are part of this stage's
// cache key, so they must be reflected in the output deterministically.
func (t *Tailor) TailorResume(ctx context.Context, analysis *model.JobAnalysis, baseID string, resume model.Resume, discoveredBullets []string) (*model.TailoredResume, error) {
	t.obs.Log().Info().Str("base", baseID).Int("discovered", len(discoveredBullets)).Msg("tailoring resume")

	// Fold discovered bullets into the most recent position before the
	// model sees the resume, the same way an operator would.
	enriched := resume
	if len(discoveredBullets) > 0 && len(enriched.Experience) > 0 {
		exp := make([]model.WorkExperience, len(enriched.Experience))
		copy(exp, enriched.Experience)
		exp[0].Bullets = append(append([]string{}, exp[0].Bullets...), discoveredBullets...)
		enriched.Experience = exp
	}

	resumeJSON, err := json.Marshal(enriched)
	if err != nil {
		return nil, fmt.Errorf("failed to encode base resume: %w", err)
	}

	system := fmt.Sprintf(`You are an expert resume writer for the %s industry.
Rewrite resumes to match a target job without inventing experience.
Prefer these action verbs: %s.
Respond with a single JSON object: {"resume": <resume object with the same schema as the input>,
"changes": [{"section": "...", "change": "..."}], "keywords_used": ["..."]}.`,
		t.config.DisplayName, joinHead(t.config.ActionVerbs, 10))

	prompt := fmt.Sprintf(`TARGET JOB: %s (%s)
Required skills: %s
Critical keywords: %s

BASE RESUME:
%s`,
		analysis.RoleType, analysis.Seniority,
		joinHead(analysis.RequiredSkills, 10),
		joinHead(analysis.CriticalKeywords, 10),
		resumeJSON)

	reply, err := t.complete(ctx, system, prompt, 8192, 0.7)
	if err != nil {
		return nil, err
	}
	body, err := extractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("tailoring reply unparsable: %w", err)
	}

	var out struct {
		Resume       model.Resume          `json:"resume"`
		Changes      []model.SectionChange `json:"changes"`
		KeywordsUsed []string              `json:"keywords_used"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("failed to decode tailored resume: %w", err)
	}

	// A model that drops the header entirely produced garbage; fall back
	// to the base header rather than persisting a broken payload.
	if out.Resume.Name == "" {
		out.Resume.Name = resume.Name
		out.Resume.Email = resume.Email
	}

	return &model.TailoredResume{
		Resume:       out.Resume,
		BaseResumeID: baseID,
		Changes:      out.Changes,
		KeywordsUsed: dedupe(out.KeywordsUsed),
	}, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
