// Package discovery implements the bounded, interactive skill-discovery
// dialogue that runs between resume selection and tailoring. The session
// is ephemeral: only its output (accepted bullets) survives, folded into
// the tailoring stage's cache key by the pipeline.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

// ErrAborted is returned by a Prompter when the operator cancels the
// dialogue. The session recovers by returning whatever bullets were
// accepted before the abort.
var ErrAborted = errors.New("discovery session aborted")

// Defaults for session bounds.
const (
	DefaultMaxRoundsPerSkill  = 3
	DefaultMaxSkillsToExplore = 5
)

// Guidance is the coach's opening for one round: a question plus context
// on why the skill matters and where transferable evidence may hide.
type Guidance struct {
	Questions            []string `json:"questions"`
	Context              string   `json:"context"`
	TransferableExamples []string `json:"transferable_examples"`
}

// Evaluation is the coach's judgement of one free-text answer.
type Evaluation struct {
	HasSkill             bool     `json:"has_skill"`
	Confidence           float64  `json:"confidence"`
	Reasoning            string   `json:"reasoning"`
	BulletSuggestions    []string `json:"bullet_suggestions"`
	NeedsMoreExploration bool     `json:"needs_more_exploration"`
	FollowUpQuestion     string   `json:"follow_up_question,omitempty"`
}

// EvidenceFound reports whether the answer clears the acceptance bar.
func (e *Evaluation) EvidenceFound() bool {
	return e.HasSkill && e.Confidence > 0.5
}

// Coach is the external evaluator behind the dialogue: it generates
// questions, judges answers, and drafts resume bullets.
type Coach interface {
	Guide(ctx context.Context, skill string, analysis *model.JobAnalysis, resume *model.Resume, transcript []string) (*Guidance, error)
	Evaluate(ctx context.Context, skill, answer string, analysis *model.JobAnalysis) (*Evaluation, error)
}

// Prompter is the human side of the dialogue. Implementations may return
// ErrAborted at any point to cancel the session.
type Prompter interface {
	Say(msg string)
	Ask(prompt string) (string, error)
	Confirm(prompt string, def bool) (bool, error)
}

// Options bound a session.
type Options struct {
	MaxRoundsPerSkill  int
	MaxSkillsToExplore int
}

func (o Options) withDefaults() Options {
	if o.MaxRoundsPerSkill <= 0 {
		o.MaxRoundsPerSkill = DefaultMaxRoundsPerSkill
	}
	if o.MaxSkillsToExplore <= 0 {
		o.MaxSkillsToExplore = DefaultMaxSkillsToExplore
	}
	return o
}

// Session walks the missing skills in priority order, running up to
// MaxRoundsPerSkill question rounds per skill and accumulating accepted
// bullets. In-memory only; never persisted as an artifact.
type Session struct {
	skills   []string
	coach    Coach
	prompter Prompter
	obs      *observe.Observer
	opts     Options

	current int
	bullets []string
	skills_ []string // skills with accepted evidence
}

// NewSession creates a session over the given skills, most critical
// first.
func NewSession(skills []string, coach Coach, prompter Prompter, obs *observe.Observer, opts Options) *Session {
	return &Session{
		skills:   skills,
		coach:    coach,
		prompter: prompter,
		obs:      obs,
		opts:     opts.withDefaults(),
	}
}

// Bullets returns the bullets accepted so far, in acceptance order.
func (s *Session) Bullets() []string {
	out := make([]string, len(s.bullets))
	copy(out, s.bullets)
	return out
}

// DiscoveredSkills returns the skills for which evidence was accepted.
func (s *Session) DiscoveredSkills() []string {
	out := make([]string, len(s.skills_))
	copy(out, s.skills_)
	return out
}

// Run drives the dialogue to completion. On operator abort it returns
// the bullets accepted so far together with ErrAborted; the caller is
// expected to proceed with those bullets rather than fail.
func (s *Session) Run(ctx context.Context, analysis *model.JobAnalysis, resume *model.Resume) ([]string, error) {
	limit := len(s.skills)
	if limit > s.opts.MaxSkillsToExplore {
		limit = s.opts.MaxSkillsToExplore
	}

	for ; s.current < limit; s.current++ {
		skill := s.skills[s.current]
		s.prompter.Say(fmt.Sprintf("Exploring skill %d/%d: %s", s.current+1, limit, skill))

		if err := s.exploreSkill(ctx, skill, analysis, resume); err != nil {
			if errors.Is(err, ErrAborted) {
				s.obs.Log().Info().Int("bullets", len(s.bullets)).Msg("discovery aborted by operator")
				return s.Bullets(), ErrAborted
			}
			return s.Bullets(), err
		}
	}

	s.obs.Log().Info().
		Int("skills_explored", s.current).
		Int("bullets", len(s.bullets)).
		Msg("discovery session complete")
	return s.Bullets(), nil
}

func (s *Session) exploreSkill(ctx context.Context, skill string, analysis *model.JobAnalysis, resume *model.Resume) error {
	var transcript []string

	for round := 0; round < s.opts.MaxRoundsPerSkill; round++ {
		if err := ctx.Err(); err != nil {
			return ErrAborted
		}

		guidance, err := s.coach.Guide(ctx, skill, analysis, resume, transcript)
		if err != nil {
			return fmt.Errorf("guidance for %s failed: %w", skill, err)
		}

		if round == 0 && guidance.Context != "" {
			s.prompter.Say("Why this matters: " + guidance.Context)
			for _, ex := range head(guidance.TransferableExamples, 3) {
				s.prompter.Say("Think about: " + ex)
			}
		}

		question := fmt.Sprintf("Do you have any experience related to %s?", skill)
		if len(guidance.Questions) > 0 {
			question = guidance.Questions[0]
		}

		answer, err := s.prompter.Ask(question + " (or 'skip' to move on)")
		if err != nil {
			return err
		}
		if isSkip(answer) {
			s.prompter.Say("Skipping this skill")
			return nil
		}

		transcript = append(transcript, "Q: "+question, "A: "+answer)

		eval, err := s.coach.Evaluate(ctx, skill, answer, analysis)
		if err != nil {
			return fmt.Errorf("evaluation for %s failed: %w", skill, err)
		}

		if eval.EvidenceFound() {
			s.prompter.Say("Found relevant experience: " + eval.Reasoning)
			if err := s.offerBullets(skill, eval); err != nil {
				return err
			}
			return nil
		}

		if eval.NeedsMoreExploration && round < s.opts.MaxRoundsPerSkill-1 {
			if eval.FollowUpQuestion != "" {
				s.prompter.Say("Follow-up: " + eval.FollowUpQuestion)
			}
			continue
		}
	}

	s.prompter.Say(fmt.Sprintf("No clear connection to %s after %d rounds, moving on", skill, s.opts.MaxRoundsPerSkill))
	return nil
}

func (s *Session) offerBullets(skill string, eval *Evaluation) error {
	suggestions := head(eval.BulletSuggestions, 2)
	if len(suggestions) == 0 {
		return nil
	}

	for i, b := range suggestions {
		s.prompter.Say(fmt.Sprintf("Suggested bullet %d: %s", i+1, b))
	}
	accept, err := s.prompter.Confirm("Add these bullets to your resume?", true)
	if err != nil {
		return err
	}
	if accept {
		s.bullets = append(s.bullets, suggestions...)
		s.skills_ = append(s.skills_, skill)
	}
	return nil
}

func isSkip(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "skip", "s", "no", "n":
		return true
	}
	return false
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
