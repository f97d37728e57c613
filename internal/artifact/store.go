// Package artifact implements the durable artifact store and the stage
// cache gate that wraps every generation stage with check-compute-store
// semantics.
//
// Layout is one human-editable JSON document per artifact, at
// <root>/<stage>/<key>.json. Editing a cached artifact by hand and
// re-running downstream stages is a supported workflow, so the files are
// indented and self-describing.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/enn-tee/agentic-job-search/internal/fingerprint"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

// Artifact is one stage's cached output plus provenance metadata.
// Immutable once written: a re-computation for the same key replaces the
// whole document.
type Artifact struct {
	Stage      model.StageKind                        `json:"stage"`
	Key        fingerprint.Fingerprint                `json:"key"`
	CreatedAt  time.Time                              `json:"created_at"`
	SourceRefs map[string]fingerprint.Fingerprint     `json:"source_refs,omitempty"`
	Payload    json.RawMessage                        `json:"payload"`
}

// Entry is a listing row for inspection tooling.
type Entry struct {
	Stage     model.StageKind
	Key       fingerprint.Fingerprint
	CreatedAt time.Time
	Sources   string
}

// Store is a file-backed, stage-namespaced artifact store. Writes are
// atomic with respect to readers (temp file + rename); reads never fail
// for missing or corrupt artifacts, they report a miss.
type Store struct {
	root string
	obs  *observe.Observer
}

// NewStore opens (creating if needed) an artifact store rooted at dir.
func NewStore(dir string, obs *observe.Observer) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create artifact store root: %w", err)
	}
	return &Store{root: dir, obs: obs}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(stage model.StageKind, key fingerprint.Fingerprint) string {
	return filepath.Join(s.root, string(stage), string(key)+".json")
}

// Get looks up the artifact for (stage, key). A missing, unreadable, or
// malformed artifact is a miss, never an error; corruption is logged so
// the operator can see why a recomputation happened.
func (s *Store) Get(stage model.StageKind, key fingerprint.Fingerprint) (*Artifact, bool) {
	data, err := os.ReadFile(s.path(stage, key)) // #nosec G304
	if err != nil {
		return nil, false
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		s.obs.Log().Warn().Str("stage", string(stage)).Str("key", key.Short()).Err(err).Msg("corrupt artifact, treating as miss")
		return nil, false
	}
	if art.Key != key || art.Stage != stage {
		// Hand-edited or misplaced file; its identity no longer matches.
		s.obs.Log().Warn().Str("stage", string(stage)).Str("key", key.Short()).Msg("artifact identity mismatch, treating as miss")
		return nil, false
	}
	return &art, true
}

// Put writes (or fully replaces) the artifact for (stage, key). The write
// goes to a temp file in the same directory and is renamed into place, so
// a concurrent reader sees either the old document or the new one.
func (s *Store) Put(stage model.StageKind, key fingerprint.Fingerprint, payload json.RawMessage, refs map[string]fingerprint.Fingerprint) error {
	if !stage.Valid() {
		return fmt.Errorf("invalid stage %q", stage)
	}

	art := Artifact{
		Stage:      stage,
		Key:        key,
		CreatedAt:  time.Now().UTC(),
		SourceRefs: refs,
		Payload:    payload,
	}
	data, err := json.MarshalIndent(&art, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	dir := filepath.Join(s.root, string(stage))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create stage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+string(key)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path(stage, key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit artifact: %w", err)
	}
	return nil
}

// List returns entries for one stage, or for every stage when stage is
// empty. Entries are sorted newest first within a stage.
func (s *Store) List(stage model.StageKind) ([]Entry, error) {
	stages := model.Stages
	if stage != "" {
		if !stage.Valid() {
			return nil, fmt.Errorf("invalid stage %q", stage)
		}
		stages = []model.StageKind{stage}
	}

	var entries []Entry
	for _, st := range stages {
		dir := filepath.Join(s.root, string(st))
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to list stage %s: %w", st, err)
		}
		stageEntries := make([]Entry, 0, len(files))
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, f.Name())) // #nosec G304
			if err != nil {
				continue
			}
			var art Artifact
			if err := json.Unmarshal(data, &art); err != nil {
				s.obs.Log().Warn().Str("file", f.Name()).Err(err).Msg("skipping unreadable artifact in listing")
				continue
			}
			stageEntries = append(stageEntries, Entry{
				Stage:     art.Stage,
				Key:       art.Key,
				CreatedAt: art.CreatedAt,
				Sources:   summarizeRefs(art.SourceRefs),
			})
		}
		sort.Slice(stageEntries, func(i, j int) bool {
			return stageEntries[i].CreatedAt.After(stageEntries[j].CreatedAt)
		})
		entries = append(entries, stageEntries...)
	}
	return entries, nil
}

// Clear removes every artifact for one stage, or all stages when stage is
// empty. Returns the number of artifacts removed. Irreversible.
func (s *Store) Clear(stage model.StageKind) (int, error) {
	stages := model.Stages
	if stage != "" {
		if !stage.Valid() {
			return 0, fmt.Errorf("invalid stage %q", stage)
		}
		stages = []model.StageKind{stage}
	}

	removed := 0
	for _, st := range stages {
		dir := filepath.Join(s.root, string(st))
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("failed to read stage %s: %w", st, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			if err := os.Remove(filepath.Join(dir, f.Name())); err != nil {
				return removed, fmt.Errorf("failed to remove artifact: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}

func summarizeRefs(refs map[string]fingerprint.Fingerprint) string {
	if len(refs) == 0 {
		return ""
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + refs[name].Short()
	}
	return strings.Join(parts, " ")
}
