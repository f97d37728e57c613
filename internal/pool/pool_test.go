package pool

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

type countingParser struct {
	calls int
}

func (p *countingParser) Parse(_ context.Context, path string) (*model.Resume, error) {
	p.calls++
	return &model.Resume{Name: "Parsed From " + filepath.Base(path)}, nil
}

func testObserver(t *testing.T) *observe.Observer {
	t.Helper()
	obs := observe.New(io.Discard, false)
	t.Cleanup(func() { obs.Close() })
	return obs
}

func writeResumeJSON(t *testing.T, dir, id string, resume model.Resume) {
	t.Helper()
	data, err := json.Marshal(resume)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadJSONResumes(t *testing.T) {
	dir := t.TempDir()
	writeResumeJSON(t, dir, "analyst", model.Resume{Name: "A", TechnicalSkills: []string{"SQL"}})
	writeResumeJSON(t, dir, "engineer", model.Resume{Name: "B"})

	p := New(dir, nil, testObserver(t))
	candidates, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].ID != "analyst" || candidates[1].ID != "engineer" {
		t.Errorf("IDs = %s, %s (want sorted analyst, engineer)", candidates[0].ID, candidates[1].ID)
	}
	if candidates[0].Fingerprint == candidates[1].Fingerprint {
		t.Error("distinct files produced the same fingerprint")
	}
	if candidates[0].Resume.Name != "A" {
		t.Errorf("resume = %+v", candidates[0].Resume)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{ nope"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := New(dir, nil, testObserver(t))
	if _, err := p.Load(context.Background()); err == nil {
		t.Fatal("Load accepted a malformed resume file")
	}
}

func TestLoadFindsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	if err := os.MkdirAll(sub, 0750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeResumeJSON(t, sub, "old", model.Resume{Name: "Old"})

	p := New(dir, nil, testObserver(t))
	candidates, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "old" {
		t.Fatalf("candidates = %+v", candidates)
	}
}

func TestLoadPDFCachesParse(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "cv.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 fake content"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parser := &countingParser{}
	p := New(dir, parser, testObserver(t))

	first, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if len(first) != 1 || parser.calls != 1 {
		t.Fatalf("first load: %d candidates, %d parses", len(first), parser.calls)
	}

	second, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if parser.calls != 1 {
		t.Errorf("unchanged file reparsed: %d parses", parser.calls)
	}
	if second[0].Fingerprint != first[0].Fingerprint {
		t.Errorf("fingerprint changed across loads")
	}
	if second[0].Resume.Name != first[0].Resume.Name {
		t.Errorf("cached parse = %+v", second[0].Resume)
	}
}

func TestLoadPDFReparsesOnContentChange(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "cv.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 version one"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parser := &countingParser{}
	p := New(dir, parser, testObserver(t))
	first, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}

	// Same length, different bytes: the size fast-path must not be the
	// only check.
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 version two"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	second, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	if parser.calls != 2 {
		t.Errorf("changed file not reparsed: %d parses", parser.calls)
	}
	if second[0].Fingerprint == first[0].Fingerprint {
		t.Error("fingerprint unchanged after content edit")
	}
}

func TestLoadPDFCorruptCacheEntryReparses(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "cv.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 fake content"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parser := &countingParser{}
	p := New(dir, parser, testObserver(t))
	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	entry := filepath.Join(dir, ".parsed", "cv.json")
	if err := os.WriteFile(entry, []byte("garbage"), 0600); err != nil {
		t.Fatalf("corrupting entry: %v", err)
	}

	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if parser.calls != 2 {
		t.Errorf("corrupt cache entry not reparsed: %d parses", parser.calls)
	}
}

func TestLoadSkipsPDFWithoutParser(t *testing.T) {
	dir := t.TempDir()
	writeResumeJSON(t, dir, "analyst", model.Resume{Name: "A"})
	if err := os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := New(dir, nil, testObserver(t))
	candidates, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "analyst" {
		t.Fatalf("candidates = %+v", candidates)
	}
}

func TestParseStatesAndClear(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF content"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := New(dir, &countingParser{}, testObserver(t))
	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	states, err := p.ParseStates()
	if err != nil {
		t.Fatalf("ParseStates: %v", err)
	}
	if len(states) != 1 || states[0].ID != "cv" {
		t.Fatalf("states = %+v", states)
	}

	n, err := p.ClearParsed()
	if err != nil || n != 1 {
		t.Fatalf("ClearParsed = (%d, %v), want (1, nil)", n, err)
	}
	states, err = p.ParseStates()
	if err != nil {
		t.Fatalf("ParseStates after clear: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("states after clear = %+v", states)
	}
}
