// Package pipeline coordinates the tailoring stages: analyze the
// posting, select a base resume, optionally run skill discovery, tailor,
// and review. Each generation stage runs behind a cache gate keyed on a
// fingerprint of exactly its inputs, so re-runs only pay for what
// changed.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/enn-tee/agentic-job-search/internal/agent"
	"github.com/enn-tee/agentic-job-search/internal/artifact"
	"github.com/enn-tee/agentic-job-search/internal/discovery"
	"github.com/enn-tee/agentic-job-search/internal/fingerprint"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

// Analyzer extracts structured requirements from a posting.
type Analyzer interface {
	Analyze(ctx context.Context, posting model.JobPosting) (*model.JobAnalysis, error)
}

// Selector picks the best base resume from the pool.
type Selector interface {
	Select(ctx context.Context, analysis *model.JobAnalysis, candidates []model.Candidate) (*model.SelectionResult, error)
}

// TailorAgent rewrites the selected resume for the job.
type TailorAgent interface {
	TailorResume(ctx context.Context, analysis *model.JobAnalysis, baseID string, resume model.Resume, discoveredBullets []string) (*model.TailoredResume, error)
}

// Reviewer scores the tailored resume.
type Reviewer interface {
	Review(ctx context.Context, analysis *model.JobAnalysis, tailored *model.TailoredResume) (*model.QualityReview, error)
}

// Discoverer runs an interactive skill-discovery dialogue over the
// missing skills and returns the bullets the operator accepted. It is
// invoked outside any cache gate: dialogue output is never cached, it
// only feeds the tailoring stage's key.
type Discoverer func(ctx context.Context, analysis *model.JobAnalysis, resume *model.Resume, missing []string) ([]string, error)

// Options control one pipeline run.
type Options struct {
	// BaseResumeID pins the base resume, skipping the selection stage.
	BaseResumeID string
	// Discover enables the skill-discovery dialogue when gaps exist.
	Discover bool
}

// Result is everything one run produced, with the cache outcome of each
// stage so the operator can see what was reused.
type Result struct {
	Analysis  *model.JobAnalysis
	Selection *model.SelectionResult
	Tailored  *model.TailoredResume
	Review    *model.QualityReview

	DiscoveredBullets []string
	Outcomes          map[model.StageKind]artifact.Outcome
}

// Pipeline wires the agents to their cache gates.
type Pipeline struct {
	analyzer   Analyzer
	selector   Selector
	tailor     TailorAgent
	reviewer   Reviewer
	discoverer Discoverer

	gates map[model.StageKind]*artifact.Gate
	obs   *observe.Observer
}

// New builds a pipeline over the given store and agents. discoverer may
// be nil when discovery is disabled.
func New(store *artifact.Store, analyzer Analyzer, selector Selector, tailor TailorAgent, reviewer Reviewer, discoverer Discoverer, obs *observe.Observer) *Pipeline {
	gates := make(map[model.StageKind]*artifact.Gate, len(model.Stages))
	for _, stage := range model.Stages {
		gates[stage] = artifact.NewGate(store, stage, obs)
	}
	return &Pipeline{
		analyzer:   analyzer,
		selector:   selector,
		tailor:     tailor,
		reviewer:   reviewer,
		discoverer: discoverer,
		gates:      gates,
		obs:        obs,
	}
}

// Run executes the full pipeline for one posting against one candidate
// pool.
func (p *Pipeline) Run(ctx context.Context, posting model.JobPosting, pool []model.Candidate, opts Options) (*Result, error) {
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	ctx, span := p.obs.StartSpan(ctx, "pipeline.run")
	defer span.End()

	result := &Result{Outcomes: make(map[model.StageKind]artifact.Outcome, len(model.Stages))}
	jobKey := fingerprint.Text(posting.Description)

	analysis, outcome, err := artifact.Run[model.JobAnalysis](ctx, p.gates[model.StageJobAnalysis], jobKey,
		map[string]fingerprint.Fingerprint{"job": jobKey},
		func(ctx context.Context) (*model.JobAnalysis, error) {
			return p.analyzer.Analyze(ctx, posting)
		})
	if err != nil {
		return nil, stageErr(model.StageJobAnalysis, err)
	}
	result.Analysis = analysis
	result.Outcomes[model.StageJobAnalysis] = outcome

	selection, outcome, err := p.selectBase(ctx, jobKey, analysis, pool, opts)
	if err != nil {
		return result, err
	}
	result.Selection = selection
	result.Outcomes[model.StageResumeSelection] = outcome

	selected, err := candidateByID(pool, selection.SelectedID)
	if err != nil {
		return result, stageErr(model.StageResumeSelection, err)
	}

	bullets, err := p.discover(ctx, analysis, selected, selection, opts)
	if err != nil {
		return result, err
	}
	result.DiscoveredBullets = bullets

	tailorKey := tailorKey(jobKey, selected.Fingerprint, bullets)
	tailored, outcome, err := artifact.Run[model.TailoredResume](ctx, p.gates[model.StageTailoredResume], tailorKey,
		map[string]fingerprint.Fingerprint{"job": jobKey, "base_resume": selected.Fingerprint},
		func(ctx context.Context) (*model.TailoredResume, error) {
			return p.tailor.TailorResume(ctx, analysis, selected.ID, selected.Resume, bullets)
		})
	if err != nil {
		return result, stageErr(model.StageTailoredResume, err)
	}
	result.Tailored = tailored
	result.Outcomes[model.StageTailoredResume] = outcome

	reviewKey, err := reviewKey(tailored)
	if err != nil {
		return result, stageErr(model.StageQualityReview, err)
	}
	review, outcome, err := artifact.Run[model.QualityReview](ctx, p.gates[model.StageQualityReview], reviewKey,
		map[string]fingerprint.Fingerprint{"tailored": tailorKey},
		func(ctx context.Context) (*model.QualityReview, error) {
			return p.reviewer.Review(ctx, analysis, tailored)
		})
	if err != nil {
		return result, stageErr(model.StageQualityReview, err)
	}
	result.Review = review
	result.Outcomes[model.StageQualityReview] = outcome

	return result, nil
}

// selectBase runs the gated selection stage, or synthesizes a pinned
// selection when the operator chose the base themselves. A pinned
// selection skips the gate entirely: it reflects an operator decision,
// not a computation worth caching.
func (p *Pipeline) selectBase(ctx context.Context, jobKey fingerprint.Fingerprint, analysis *model.JobAnalysis, pool []model.Candidate, opts Options) (*model.SelectionResult, artifact.Outcome, error) {
	if opts.BaseResumeID != "" {
		pinned, err := candidateByID(pool, opts.BaseResumeID)
		if err != nil {
			return nil, "", stageErr(model.StageResumeSelection, err)
		}
		missingRequired, missingPreferred := agent.SkillGaps(analysis, &pinned.Resume)
		p.obs.Log().Info().Str("resume", pinned.ID).Msg("base resume pinned, skipping selection")
		return &model.SelectionResult{
			Matches:          []model.ResumeMatch{{ResumeID: pinned.ID, Score: 1.0, Reason: "pinned by operator"}},
			SelectedID:       pinned.ID,
			SelectedScore:    1.0,
			MissingRequired:  missingRequired,
			MissingPreferred: missingPreferred,
		}, artifact.OutcomeSkipped, nil
	}

	key := selectionKey(jobKey, pool)
	selection, outcome, err := artifact.Run[model.SelectionResult](ctx, p.gates[model.StageResumeSelection], key,
		map[string]fingerprint.Fingerprint{"job": jobKey, "pool": poolFingerprint(pool)},
		func(ctx context.Context) (*model.SelectionResult, error) {
			return p.selector.Select(ctx, analysis, pool)
		})
	if err != nil {
		return nil, "", stageErr(model.StageResumeSelection, err)
	}
	return selection, outcome, nil
}

// discover runs the dialogue when enabled and there are gaps to explore.
// An aborted session is not a failure: the bullets accepted before the
// abort still flow into tailoring.
func (p *Pipeline) discover(ctx context.Context, analysis *model.JobAnalysis, selected *model.Candidate, selection *model.SelectionResult, opts Options) ([]string, error) {
	if !opts.Discover || p.discoverer == nil {
		return nil, nil
	}
	missing := selection.MissingSkills()
	if len(missing) == 0 {
		p.obs.Log().Info().Msg("no skill gaps, skipping discovery")
		return nil, nil
	}

	bullets, err := p.discoverer(ctx, analysis, &selected.Resume, missing)
	if err != nil {
		if errors.Is(err, discovery.ErrAborted) {
			p.obs.Log().Warn().Int("bullets", len(bullets)).Msg("discovery aborted, continuing with accepted bullets")
			return bullets, nil
		}
		return nil, stageErr(model.StageTailoredResume, fmt.Errorf("skill discovery failed: %w", err))
	}
	return bullets, nil
}

// selectionKey covers the job plus the identity and content of every
// candidate. Candidate order must not matter: adding, removing, or
// editing a resume invalidates the selection, reordering does not.
func selectionKey(jobKey fingerprint.Fingerprint, pool []model.Candidate) fingerprint.Fingerprint {
	return fingerprint.Text(string(jobKey), string(poolFingerprint(pool)))
}

func poolFingerprint(pool []model.Candidate) fingerprint.Fingerprint {
	elems := make([]string, len(pool))
	for i, cand := range pool {
		elems[i] = cand.ID + ":" + string(cand.Fingerprint)
	}
	return fingerprint.SortedSet(elems)
}

// tailorKey covers the job, the chosen base resume's content, and the
// discovered bullets in acceptance order. Discovery output changes the
// key, so a run with different accepted bullets recomputes.
func tailorKey(jobKey, baseFP fingerprint.Fingerprint, bullets []string) fingerprint.Fingerprint {
	parts := make([]string, 0, len(bullets)+2)
	parts = append(parts, string(jobKey), string(baseFP))
	parts = append(parts, bullets...)
	return fingerprint.Text(parts...)
}

// reviewKey is a fingerprint of the tailored payload itself, so a
// hand-edited tailored artifact gets a fresh review.
func reviewKey(tailored *model.TailoredResume) (fingerprint.Fingerprint, error) {
	payload, err := json.Marshal(tailored)
	if err != nil {
		return "", fmt.Errorf("failed to encode tailored resume for review key: %w", err)
	}
	return fingerprint.Sum(payload), nil
}

func candidateByID(pool []model.Candidate, id string) (*model.Candidate, error) {
	for i := range pool {
		if pool[i].ID == id {
			return &pool[i], nil
		}
	}
	return nil, fmt.Errorf("resume %q not in pool", id)
}
