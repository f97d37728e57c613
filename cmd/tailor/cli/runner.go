package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enn-tee/agentic-job-search/internal/agent"
	"github.com/enn-tee/agentic-job-search/internal/artifact"
	"github.com/enn-tee/agentic-job-search/internal/discovery"
	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/pipeline"
	"github.com/enn-tee/agentic-job-search/internal/pool"
	"github.com/enn-tee/agentic-job-search/internal/provider"
	"github.com/enn-tee/agentic-job-search/internal/settings"
	"github.com/enn-tee/agentic-job-search/internal/ui"
)

type Runner struct {
	Observer *observe.Observer
	Store    *artifact.Store
	Settings *settings.Store
	Provider provider.Provider
	UI       ui.UI
}

func NewRunner(obs *observe.Observer, store *artifact.Store, s *settings.Store, p provider.Provider, u ui.UI) *Runner {
	return &Runner{
		Observer: obs,
		Store:    store,
		Settings: s,
		Provider: p,
		UI:       getUI(u),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.UI.UpdateStatus("Loading job posting...")
	posting, err := loadPosting(jobFile)
	if err != nil {
		r.Observer.Log().Error().Err(err).Msg("Failed to load job posting")
		return err
	}

	cfg, err := industry.Load(industryName, configDir)
	if err != nil {
		r.Observer.Log().Error().Err(err).Msg("Failed to load industry config")
		return err
	}

	r.UI.UpdateStatus("Scanning resume pool...")
	candidates, err := pool.New(poolDir, nil, r.Observer).Load(ctx)
	if err != nil {
		r.Observer.Log().Error().Err(err).Msg("Failed to load resume pool")
		return err
	}

	pipe := pipeline.New(
		r.Store,
		agent.NewJobAnalyzer(r.Provider, cfg, r.Observer),
		agent.NewResumeMatcher(r.Provider, cfg, r.Observer),
		agent.NewTailor(r.Provider, cfg, r.Observer),
		agent.NewQualityReviewer(r.Provider, cfg, r.Observer),
		r.discoverer(cfg),
		r.Observer,
	)

	r.UI.UpdateStatus("Running pipeline...")
	result, err := pipe.Run(ctx, *posting, candidates, pipeline.Options{
		BaseResumeID: baseResume,
		Discover:     discover,
	})
	if result != nil {
		for _, stage := range model.Stages {
			if outcome, ok := result.Outcomes[stage]; ok {
				r.UI.UpdateStage(stage, string(outcome))
			}
		}
	}
	if err != nil {
		r.UI.UpdateStatus("Pipeline failed")
		r.Observer.Log().Error().Err(err).Msg("Pipeline failed")
		return err
	}

	r.UI.UpdateStatus("Writing output...")
	outPath, err := r.writeOutput(posting, result)
	if err != nil {
		r.Observer.Log().Error().Err(err).Msg("Failed to write output")
		return err
	}

	if err := r.Settings.SaveLastJob(settings.LastJob{
		JobFile:  jobFile,
		Company:  posting.Company,
		Title:    posting.Title,
		Industry: industryName,
	}); err != nil {
		r.Observer.Log().Warn().Err(err).Msg("Failed to save last job")
	}
	if err := r.Settings.RecordRun(settings.Run{
		Company:  posting.Company,
		Title:    posting.Title,
		Industry: industryName,
		ResumeID: result.Selection.SelectedID,
		Score:    result.Review.OverallScore,
	}); err != nil {
		r.Observer.Log().Warn().Err(err).Msg("Failed to record run")
	}

	r.UI.UpdateStatus("Completed")
	r.printSummary(result, outPath)
	return nil
}

// discoverer wires the interactive skill dialogue; nil when the operator
// did not opt in, so the pipeline skips the branch entirely.
func (r *Runner) discoverer(cfg *industry.Config) pipeline.Discoverer {
	if !discover || ciMode {
		return nil
	}
	coach := agent.NewSkillCoach(r.Provider, cfg, r.Observer)
	prompter := NewStdinPrompter(os.Stdin, os.Stdout)
	return func(ctx context.Context, analysis *model.JobAnalysis, resume *model.Resume, missing []string) ([]string, error) {
		session := discovery.NewSession(missing, coach, prompter, r.Observer, discovery.Options{})
		return session.Run(ctx, analysis, resume)
	}
}

// loadPosting reads the posting text. Company and title come from flags;
// the description is the whole file.
func loadPosting(path string) (*model.JobPosting, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	description := strings.TrimSpace(string(data))
	if description == "" {
		return nil, fmt.Errorf("job file %s is empty", path)
	}
	return &model.JobPosting{
		Company:     company,
		Title:       jobTitle,
		Description: description,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// writeOutput writes the tailored resume and a metadata sidecar.
func (r *Runner) writeOutput(posting *model.JobPosting, result *pipeline.Result) (string, error) {
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	name := sanitize(posting.Company)
	if name == "" {
		name = "job"
	}
	base := fmt.Sprintf("%s-%s", name, stamp)

	resumePath := filepath.Join(outputDir, base+".json")
	resumeJSON, err := json.MarshalIndent(result.Tailored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tailored resume: %w", err)
	}
	if err := os.WriteFile(resumePath, resumeJSON, 0600); err != nil {
		return "", fmt.Errorf("failed to write tailored resume: %w", err)
	}

	meta := model.ResumeMetadata{
		ResumeID:       base,
		CreatedAt:      time.Now().UTC(),
		BaseResumeID:   result.Tailored.BaseResumeID,
		JobPostingURL:  posting.URL,
		Company:        posting.Company,
		JobTitle:       posting.Title,
		TargetRole:     result.Analysis.RoleType,
		TargetIndustry: result.Analysis.Industry,
		MatchScore:     result.Selection.SelectedScore,
		FilePath:       resumePath,
	}
	metaJSON, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	metaPath := filepath.Join(outputDir, base+".meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0600); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	return resumePath, nil
}

func (r *Runner) printSummary(result *pipeline.Result, outPath string) {
	fmt.Println()
	for _, stage := range model.Stages {
		outcome, ok := result.Outcomes[stage]
		if !ok {
			continue
		}
		fmt.Printf("  %-18s %s\n", stage, outcome)
	}
	fmt.Printf("\nBase resume:  %s (score %.2f)\n", result.Selection.SelectedID, result.Selection.SelectedScore)
	if len(result.DiscoveredBullets) > 0 {
		fmt.Printf("Discovered:   %d new bullet(s)\n", len(result.DiscoveredBullets))
	}
	fmt.Printf("Review score: %.1f/10", result.Review.OverallScore)
	if result.Review.InterviewLikelihood != "" {
		fmt.Printf(" (interview likelihood: %s)", result.Review.InterviewLikelihood)
	}
	fmt.Printf("\nWritten to:   %s\n", outPath)
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
