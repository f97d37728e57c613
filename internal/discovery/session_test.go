package discovery

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

type stubCoach struct {
	guideCalls int
	evalCalls  int
	evals      []Evaluation
}

func (c *stubCoach) Guide(_ context.Context, skill string, _ *model.JobAnalysis, _ *model.Resume, _ []string) (*Guidance, error) {
	c.guideCalls++
	return &Guidance{
		Questions: []string{"Tell me about " + skill},
		Context:   skill + " is central to the role",
	}, nil
}

func (c *stubCoach) Evaluate(_ context.Context, _, _ string, _ *model.JobAnalysis) (*Evaluation, error) {
	if c.evalCalls >= len(c.evals) {
		return &Evaluation{}, nil
	}
	eval := c.evals[c.evalCalls]
	c.evalCalls++
	return &eval, nil
}

type scriptedPrompter struct {
	answers  []string
	confirms []bool
	abortAt  int // 1-based Ask call to abort on; 0 disables

	asks     int
	confirmN int
	said     []string
}

func (p *scriptedPrompter) Say(msg string) { p.said = append(p.said, msg) }

func (p *scriptedPrompter) Ask(string) (string, error) {
	p.asks++
	if p.abortAt > 0 && p.asks >= p.abortAt {
		return "", ErrAborted
	}
	if p.asks > len(p.answers) {
		return "", nil
	}
	return p.answers[p.asks-1], nil
}

func (p *scriptedPrompter) Confirm(string, bool) (bool, error) {
	if p.confirmN >= len(p.confirms) {
		return true, nil
	}
	ok := p.confirms[p.confirmN]
	p.confirmN++
	return ok, nil
}

func testObserver(t *testing.T) *observe.Observer {
	t.Helper()
	obs := observe.New(io.Discard, false)
	t.Cleanup(func() { obs.Close() })
	return obs
}

func TestSessionAcceptsEvidence(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{HasSkill: true, Confidence: 0.9, Reasoning: "clear dashboard work",
			BulletSuggestions: []string{"Built executive dashboards", "Automated weekly reporting"}},
	}}
	prompter := &scriptedPrompter{answers: []string{"I built dashboards in Excel and Metabase"}}

	sess := NewSession([]string{"Tableau"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "Data Analyst"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bullets) != 2 {
		t.Fatalf("expected 2 bullets, got %d: %v", len(bullets), bullets)
	}
	if got := sess.DiscoveredSkills(); len(got) != 1 || got[0] != "Tableau" {
		t.Errorf("discovered skills = %v", got)
	}
	if coach.evalCalls != 1 {
		t.Errorf("expected 1 evaluation, got %d", coach.evalCalls)
	}
}

func TestSessionBoundsRoundsPerSkill(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{NeedsMoreExploration: true, FollowUpQuestion: "Anything adjacent?"},
		{NeedsMoreExploration: true, FollowUpQuestion: "Side projects?"},
		{NeedsMoreExploration: true, FollowUpQuestion: "Coursework?"},
		{NeedsMoreExploration: true}, // must never be reached
	}}
	prompter := &scriptedPrompter{answers: []string{"not really", "hmm", "maybe once"}}

	sess := NewSession([]string{"Kubernetes"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "SRE"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bullets) != 0 {
		t.Errorf("expected no bullets, got %v", bullets)
	}
	if coach.evalCalls != DefaultMaxRoundsPerSkill {
		t.Errorf("expected exactly %d evaluations, got %d", DefaultMaxRoundsPerSkill, coach.evalCalls)
	}
}

func TestSessionCapsSkillsExplored(t *testing.T) {
	skills := []string{"A", "B", "C", "D", "E", "F", "G"}
	coach := &stubCoach{}
	prompter := &scriptedPrompter{answers: []string{"skip", "skip", "skip", "skip", "skip", "skip", "skip"}}

	sess := NewSession(skills, coach, prompter, testObserver(t), Options{})
	if _, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "x"}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if prompter.asks != DefaultMaxSkillsToExplore {
		t.Errorf("expected %d skills probed, got %d", DefaultMaxSkillsToExplore, prompter.asks)
	}
}

func TestSessionSkipMovesToNextSkill(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{HasSkill: true, Confidence: 0.8, BulletSuggestions: []string{"Led HIPAA audit prep"}},
	}}
	prompter := &scriptedPrompter{answers: []string{"skip", "I ran our compliance audits"}}

	sess := NewSession([]string{"Epic EHR", "HIPAA"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "Analyst"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bullets) != 1 || bullets[0] != "Led HIPAA audit prep" {
		t.Errorf("bullets = %v", bullets)
	}
	if got := sess.DiscoveredSkills(); len(got) != 1 || got[0] != "HIPAA" {
		t.Errorf("discovered skills = %v", got)
	}
}

func TestSessionLowConfidenceIsNotEvidence(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{HasSkill: true, Confidence: 0.5, BulletSuggestions: []string{"tenuous"}},
		{HasSkill: true, Confidence: 0.4},
		{HasSkill: true, Confidence: 0.3},
	}}
	prompter := &scriptedPrompter{answers: []string{"kind of", "sort of", "a little"}}

	sess := NewSession([]string{"Spark"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "Data Engineer"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bullets) != 0 {
		t.Errorf("confidence at or below 0.5 must not produce bullets, got %v", bullets)
	}
}

func TestSessionAbortKeepsAcceptedBullets(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{HasSkill: true, Confidence: 0.9, BulletSuggestions: []string{"Shipped ETL pipelines"}},
	}}
	prompter := &scriptedPrompter{
		answers: []string{"I own our ETL"},
		abortAt: 2, // abort when the second skill's question arrives
	}

	sess := NewSession([]string{"ETL", "Airflow"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "Data Engineer"}, nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(bullets) != 1 || bullets[0] != "Shipped ETL pipelines" {
		t.Errorf("abort should keep accepted bullets, got %v", bullets)
	}
}

func TestSessionDeclinedBulletsAreDropped(t *testing.T) {
	coach := &stubCoach{evals: []Evaluation{
		{HasSkill: true, Confidence: 0.9, BulletSuggestions: []string{"something overstated"}},
	}}
	prompter := &scriptedPrompter{answers: []string{"yes, a bit"}, confirms: []bool{false}}

	sess := NewSession([]string{"Terraform"}, coach, prompter, testObserver(t), Options{})
	bullets, err := sess.Run(context.Background(), &model.JobAnalysis{RoleType: "SRE"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bullets) != 0 {
		t.Errorf("declined bullets must not be kept, got %v", bullets)
	}
}
