package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/discovery"
	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

// SkillCoach backs the discovery dialogue: it probes for transferable
// experience behind a missing skill and judges the operator's answers.
type SkillCoach struct {
	base
}

var _ discovery.Coach = (*SkillCoach)(nil)

func NewSkillCoach(p provider.Provider, cfg *industry.Config, obs *observe.Observer) *SkillCoach {
	return &SkillCoach{base{name: "SkillCoach", provider: p, config: cfg, obs: obs}}
}

// Guide asks the model for probing questions about one missing skill.
// A broken reply degrades to a generic question instead of killing the
// dialogue; the session can always fall back on the operator's judgement.
func (c *SkillCoach) Guide(ctx context.Context, skill string, analysis *model.JobAnalysis, resume *model.Resume, transcript []string) (*discovery.Guidance, error) {
	system := fmt.Sprintf(`You are a career coach helping a candidate in the %s industry surface
transferable experience they may not realize they have. Respond with a single JSON object:
{"questions": ["..."], "context": "why this skill matters for the role",
"transferable_examples": ["adjacent experience that often counts"]}.`,
		c.config.DisplayName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "TARGET ROLE: %s (%s)\nSKILL TO EXPLORE: %s\n", analysis.RoleType, analysis.Seniority, skill)
	if resume != nil {
		fmt.Fprintf(&sb, "CANDIDATE BACKGROUND: %s\n", resume.ProfessionalSummary)
		if len(resume.Experience) > 0 {
			fmt.Fprintf(&sb, "MOST RECENT ROLE: %s at %s\n", resume.Experience[0].Title, resume.Experience[0].Company)
		}
	}
	if len(transcript) > 0 {
		sb.WriteString("\nCONVERSATION SO FAR:\n")
		sb.WriteString(strings.Join(transcript, "\n"))
		sb.WriteString("\nAsk a different angle than before.\n")
	}

	reply, err := c.complete(ctx, system, sb.String(), 1024, 0.6)
	if err != nil {
		return nil, err
	}

	var guidance discovery.Guidance
	if body, jerr := extractJSON(reply); jerr == nil {
		if uerr := json.Unmarshal([]byte(body), &guidance); uerr == nil && len(guidance.Questions) > 0 {
			return &guidance, nil
		}
	}

	c.obs.Log().Warn().Str("skill", skill).Msg("coach reply unparsable, using generic question")
	return &discovery.Guidance{
		Questions: []string{fmt.Sprintf("Have you ever worked with %s, or something similar, in any role or project?", skill)},
	}, nil
}

// Evaluate judges one answer. Unlike Guide this must not degrade
// silently: a wrong verdict would put fabricated bullets on the resume.
func (c *SkillCoach) Evaluate(ctx context.Context, skill, answer string, analysis *model.JobAnalysis) (*discovery.Evaluation, error) {
	system := `You are a career coach evaluating whether a candidate's answer shows real,
transferable experience with a skill. Be honest: do not stretch weak evidence.
Respond with a single JSON object: {"has_skill": bool, "confidence": 0.0-1.0,
"reasoning": "...", "bullet_suggestions": ["resume bullet grounded only in what they said"],
"needs_more_exploration": bool, "follow_up_question": "..."}.`

	prompt := fmt.Sprintf(`SKILL: %s
TARGET ROLE: %s

CANDIDATE'S ANSWER:
%s

Bullets must describe only what the candidate actually said. No invented metrics.`,
		skill, analysis.RoleType, answer)

	reply, err := c.complete(ctx, system, prompt, 1024, 0.3)
	if err != nil {
		return nil, err
	}
	body, err := extractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("evaluation reply unparsable: %w", err)
	}

	var eval discovery.Evaluation
	if err := json.Unmarshal([]byte(body), &eval); err != nil {
		return nil, fmt.Errorf("failed to decode skill evaluation: %w", err)
	}
	if eval.Confidence < 0 {
		eval.Confidence = 0
	}
	if eval.Confidence > 1 {
		eval.Confidence = 1
	}
	return &eval, nil
}
