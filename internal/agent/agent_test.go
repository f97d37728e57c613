package agent

import (
	"context"
	"io"
	"testing"

	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

func testConfig() *industry.Config {
	return &industry.Config{
		Industry:         "tech",
		DisplayName:      "Software & Technology",
		PriorityKeywords: []string{"SQL", "Python"},
	}
}

func testObserver(t *testing.T) *observe.Observer {
	t.Helper()
	obs := observe.New(io.Discard, false)
	t.Cleanup(func() { obs.Close() })
	return obs
}

func TestExtractJSON(t *testing.T) {
	t.Run("Fenced", func(t *testing.T) {
		reply := "Here is the analysis:\n```json\n{\"role_type\":\"Analyst\"}\n```\nHope that helps."
		body, err := extractJSON(reply)
		if err != nil {
			t.Fatalf("extractJSON: %v", err)
		}
		if body != `{"role_type":"Analyst"}` {
			t.Errorf("extracted %q", body)
		}
	})

	t.Run("Bare", func(t *testing.T) {
		body, err := extractJSON(`{"score":0.5}`)
		if err != nil || body != `{"score":0.5}` {
			t.Errorf("extractJSON = (%q, %v)", body, err)
		}
	})

	t.Run("NoObject", func(t *testing.T) {
		if _, err := extractJSON("I cannot answer that."); err == nil {
			t.Error("prose without JSON accepted")
		}
	})
}

func TestJoinHead(t *testing.T) {
	if got := joinHead([]string{"a", "b", "c"}, 2); got != "a, b" {
		t.Errorf("joinHead = %q", got)
	}
	if got := joinHead([]string{"a"}, 5); got != "a" {
		t.Errorf("joinHead = %q", got)
	}
}

func TestJobAnalyzerAnalyze(t *testing.T) {
	t.Run("FencedReply", func(t *testing.T) {
		p := provider.NewStubProvider("```json\n{\"role_type\":\"Data Analyst\",\"required_skills\":[\"SQL\"]}\n```")
		a := NewJobAnalyzer(p, testConfig(), testObserver(t))

		analysis, err := a.Analyze(context.Background(), model.JobPosting{Title: "Analyst", Company: "DataCo", Description: "SQL work"})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if analysis.RoleType != "Data Analyst" {
			t.Errorf("RoleType = %q", analysis.RoleType)
		}
		if analysis.Industry != "tech" {
			t.Errorf("missing industry should default to the config, got %q", analysis.Industry)
		}
	})

	t.Run("UnparsableReply", func(t *testing.T) {
		p := provider.NewStubProvider("I am unable to analyze this posting.")
		a := NewJobAnalyzer(p, testConfig(), testObserver(t))
		if _, err := a.Analyze(context.Background(), model.JobPosting{Description: "x"}); err == nil {
			t.Error("prose reply should fail analysis")
		}
	})
}

func TestResumeMatcherSelect(t *testing.T) {
	analysis := &model.JobAnalysis{
		RoleType:       "Data Analyst",
		RequiredSkills: []string{"SQL", "Tableau"},
	}
	candidates := []model.Candidate{
		{ID: "engineer", Resume: model.Resume{Name: "E", TechnicalSkills: []string{"Go"}}},
		{ID: "analyst", Resume: model.Resume{Name: "A", TechnicalSkills: []string{"SQL"}}},
	}

	t.Run("RanksByScore", func(t *testing.T) {
		// Replies arrive in candidate order: engineer first, analyst second.
		p := provider.NewStubProvider(
			`{"score":0.3,"reason":"wrong domain"}`,
			`{"score":0.9,"reason":"strong SQL"}`,
		)
		m := NewResumeMatcher(p, testConfig(), testObserver(t))

		sel, err := m.Select(context.Background(), analysis, candidates)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if sel.SelectedID != "analyst" || sel.SelectedScore != 0.9 {
			t.Errorf("selected %s (%.2f)", sel.SelectedID, sel.SelectedScore)
		}
		if len(sel.Matches) != 2 || sel.Matches[0].ResumeID != "analyst" {
			t.Errorf("matches not ranked: %+v", sel.Matches)
		}
		if len(sel.MissingRequired) != 1 || sel.MissingRequired[0] != "Tableau" {
			t.Errorf("MissingRequired = %v", sel.MissingRequired)
		}
	})

	t.Run("TiesBreakByID", func(t *testing.T) {
		p := provider.NewStubProvider(
			`{"score":0.5,"reason":"ok"}`,
			`{"score":0.5,"reason":"ok"}`,
		)
		m := NewResumeMatcher(p, testConfig(), testObserver(t))

		sel, err := m.Select(context.Background(), analysis, candidates)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if sel.SelectedID != "analyst" {
			t.Errorf("tie should pick the lexically first id, got %s", sel.SelectedID)
		}
	})

	t.Run("ClampsScore", func(t *testing.T) {
		p := provider.NewStubProvider(
			`{"score":1.7,"reason":"overexcited"}`,
			`{"score":-0.2,"reason":"hostile"}`,
		)
		m := NewResumeMatcher(p, testConfig(), testObserver(t))

		sel, err := m.Select(context.Background(), analysis, candidates)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if sel.SelectedScore != 1.0 {
			t.Errorf("score not clamped: %.2f", sel.SelectedScore)
		}
		if sel.Matches[1].Score != 0 {
			t.Errorf("negative score not clamped: %.2f", sel.Matches[1].Score)
		}
	})
}

func TestSkillGaps(t *testing.T) {
	analysis := &model.JobAnalysis{
		RequiredSkills:  []string{"SQL", "Spark"},
		PreferredSkills: []string{"Python", "dbt"},
	}
	resume := &model.Resume{
		TechnicalSkills: []string{"sql"},
		Tools:           []string{"Python"},
	}

	required, preferred := SkillGaps(analysis, resume)
	if len(required) != 1 || required[0] != "Spark" {
		t.Errorf("missing required = %v", required)
	}
	if len(preferred) != 1 || preferred[0] != "dbt" {
		t.Errorf("missing preferred = %v", preferred)
	}
}
