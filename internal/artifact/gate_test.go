package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/enn-tee/agentic-job-search/internal/fingerprint"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

func testGate(t *testing.T, stage model.StageKind) (*Gate, *Store) {
	t.Helper()
	obs := observe.New(io.Discard, false)
	t.Cleanup(func() { obs.Close() })
	store, err := NewStore(t.TempDir(), obs)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewGate(store, stage, obs), store
}

func analysisFixture() *model.JobAnalysis {
	return &model.JobAnalysis{
		RoleType:       "Data Analyst",
		RequiredSkills: []string{"SQL"},
	}
}

func TestGateComputesOnceThenHits(t *testing.T) {
	gate, _ := testGate(t, model.StageJobAnalysis)
	key := fingerprint.Text("posting")
	calls := 0
	compute := func(context.Context) (*model.JobAnalysis, error) {
		calls++
		return analysisFixture(), nil
	}

	first, outcome, err := Run[model.JobAnalysis](context.Background(), gate, key, nil, compute)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if outcome != OutcomeComputed {
		t.Errorf("first outcome = %s, want computed", outcome)
	}

	second, outcome, err := Run[model.JobAnalysis](context.Background(), gate, key, nil, compute)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if outcome != OutcomeHit {
		t.Errorf("second outcome = %s, want hit", outcome)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if second.RoleType != first.RoleType {
		t.Errorf("cached payload = %+v", second)
	}
}

func TestGateDistinctKeysDoNotCollide(t *testing.T) {
	gate, _ := testGate(t, model.StageJobAnalysis)
	calls := 0
	compute := func(context.Context) (*model.JobAnalysis, error) {
		calls++
		return analysisFixture(), nil
	}

	if _, _, err := Run[model.JobAnalysis](context.Background(), gate, fingerprint.Text("a"), nil, compute); err != nil {
		t.Fatalf("Run a: %v", err)
	}
	if _, _, err := Run[model.JobAnalysis](context.Background(), gate, fingerprint.Text("b"), nil, compute); err != nil {
		t.Fatalf("Run b: %v", err)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestGateFailureIsNotPersisted(t *testing.T) {
	gate, store := testGate(t, model.StageJobAnalysis)
	key := fingerprint.Text("posting")
	boom := errors.New("provider down")

	_, _, err := Run[model.JobAnalysis](context.Background(), gate, key, nil,
		func(context.Context) (*model.JobAnalysis, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := store.Get(model.StageJobAnalysis, key); ok {
		t.Fatal("failure was persisted")
	}

	// Recovery: the next run computes and caches normally.
	_, outcome, err := Run[model.JobAnalysis](context.Background(), gate, key, nil,
		func(context.Context) (*model.JobAnalysis, error) { return analysisFixture(), nil })
	if err != nil {
		t.Fatalf("recovery Run: %v", err)
	}
	if outcome != OutcomeComputed {
		t.Errorf("recovery outcome = %s, want computed", outcome)
	}
}

func TestGateInvalidPayloadIsNotPersisted(t *testing.T) {
	gate, store := testGate(t, model.StageJobAnalysis)
	key := fingerprint.Text("posting")

	_, _, err := Run[model.JobAnalysis](context.Background(), gate, key, nil,
		func(context.Context) (*model.JobAnalysis, error) {
			return &model.JobAnalysis{}, nil // fails Validate: no role_type
		})
	if err == nil {
		t.Fatal("invalid payload accepted")
	}
	if _, ok := store.Get(model.StageJobAnalysis, key); ok {
		t.Fatal("invalid payload was persisted")
	}
}

func TestGateInvalidCachedPayloadRecomputes(t *testing.T) {
	gate, store := testGate(t, model.StageJobAnalysis)
	key := fingerprint.Text("posting")

	// A cached artifact whose payload no longer satisfies the schema, as a
	// bad hand edit would leave behind.
	if err := store.Put(model.StageJobAnalysis, key, json.RawMessage(`{"role_type":""}`), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	calls := 0
	out, outcome, err := Run[model.JobAnalysis](context.Background(), gate, key, nil,
		func(context.Context) (*model.JobAnalysis, error) {
			calls++
			return analysisFixture(), nil
		})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeComputed || calls != 1 {
		t.Errorf("outcome = %s, calls = %d; want computed, 1", outcome, calls)
	}
	if out.RoleType != "Data Analyst" {
		t.Errorf("payload = %+v", out)
	}

	// The recomputation replaced the bad document on disk.
	art, ok := store.Get(model.StageJobAnalysis, key)
	if !ok {
		t.Fatal("recomputed artifact missing")
	}
	var cached model.JobAnalysis
	if err := json.Unmarshal(art.Payload, &cached); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cached.RoleType != "Data Analyst" {
		t.Errorf("stored payload = %+v", cached)
	}
}

func TestGateCorruptFileRecomputes(t *testing.T) {
	gate, store := testGate(t, model.StageTailoredResume)
	key := fingerprint.Text("posting")
	tailored := &model.TailoredResume{
		Resume:       model.Resume{Name: "Jordan Smith"},
		BaseResumeID: "analyst",
	}

	if _, _, err := Run[model.TailoredResume](context.Background(), gate, key, nil,
		func(context.Context) (*model.TailoredResume, error) { return tailored, nil }); err != nil {
		t.Fatalf("seed Run: %v", err)
	}

	path := filepath.Join(store.Root(), string(model.StageTailoredResume), string(key)+".json")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatalf("corrupting artifact: %v", err)
	}

	calls := 0
	_, outcome, err := Run[model.TailoredResume](context.Background(), gate, key, nil,
		func(context.Context) (*model.TailoredResume, error) {
			calls++
			return tailored, nil
		})
	if err != nil {
		t.Fatalf("Run after corruption: %v", err)
	}
	if outcome != OutcomeComputed || calls != 1 {
		t.Errorf("outcome = %s, calls = %d; want computed, 1", outcome, calls)
	}
}
