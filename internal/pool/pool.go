// Package pool loads the candidate resumes offered to the selection
// stage. JSON resumes are read directly; PDF resumes go through a Parser
// with a parsed-form cache keyed by the file's content fingerprint, so a
// pool scan only pays for extraction when a file actually changed.
package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/enn-tee/agentic-job-search/internal/fingerprint"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

// DefaultPatterns select pool files relative to the pool directory.
var DefaultPatterns = []string{"**/*.json", "**/*.pdf"}

// Parser extracts a structured resume from a PDF. Extraction lives
// behind this boundary: the pool only sees bytes and structured output.
type Parser interface {
	Parse(ctx context.Context, path string) (*model.Resume, error)
}

// parsedEntry is one cached PDF extraction. Valid only while file_hash
// matches the current content fingerprint of the source file.
type parsedEntry struct {
	ID       string                  `json:"id"`
	FileSize int64                   `json:"file_size"`
	FileHash fingerprint.Fingerprint `json:"file_hash"`
	ParsedAt time.Time               `json:"parsed_at"`
	Resume   model.Resume            `json:"resume"`
}

// ParseState is a listing row for the pool inspection command.
type ParseState struct {
	ID       string
	FileHash fingerprint.Fingerprint
	ParsedAt time.Time
}

// Pool scans a directory of candidate resumes.
type Pool struct {
	dir      string
	cacheDir string
	parser   Parser
	patterns []string
	obs      *observe.Observer
}

// New creates a pool over dir. parser may be nil, in which case PDF
// files are skipped with a warning. The parsed-form cache lives under
// dir/.parsed.
func New(dir string, parser Parser, obs *observe.Observer) *Pool {
	return &Pool{
		dir:      dir,
		cacheDir: filepath.Join(dir, ".parsed"),
		parser:   parser,
		patterns: DefaultPatterns,
		obs:      obs,
	}
}

// Load scans the pool and returns candidates sorted by ID. The candidate
// fingerprint is always the fingerprint of the source file's bytes, for
// both JSON and PDF resumes, so editing a file invalidates downstream
// cache keys regardless of whether the parse would come out identical.
func (p *Pool) Load(ctx context.Context) ([]model.Candidate, error) {
	paths, err := p.scan()
	if err != nil {
		return nil, err
	}

	candidates := make([]model.Candidate, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var cand *model.Candidate
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			cand, err = p.loadJSON(path)
		case ".pdf":
			cand, err = p.loadPDF(ctx, path)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		if cand != nil {
			candidates = append(candidates, *cand)
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	p.obs.Log().Info().Str("dir", p.dir).Int("candidates", len(candidates)).Msg("resume pool loaded")
	return candidates, nil
}

func (p *Pool) scan() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range p.patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(p.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pool pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			// The parse cache lives inside the pool dir; never treat it
			// as a candidate source.
			if strings.HasPrefix(m, p.cacheDir+string(filepath.Separator)) {
				continue
			}
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (p *Pool) loadJSON(path string) (*model.Candidate, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read resume %s: %w", path, err)
	}

	var resume model.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("failed to decode resume %s: %w", path, err)
	}
	if err := resume.Validate(); err != nil {
		return nil, fmt.Errorf("resume %s invalid: %w", path, err)
	}

	return &model.Candidate{
		ID:          resumeID(path),
		Resume:      resume,
		Fingerprint: fingerprint.Sum(data),
	}, nil
}

// loadPDF extracts a PDF resume, reusing the cached extraction when the
// file is unchanged. The size check is a fast path: a size mismatch is
// already proof of staleness without hashing.
func (p *Pool) loadPDF(ctx context.Context, path string) (*model.Candidate, error) {
	if p.parser == nil {
		p.obs.Log().Warn().Str("file", path).Msg("no PDF parser configured, skipping")
		return nil, nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	id := resumeID(path)
	hash := fingerprint.Sum(data)
	size := int64(len(data))

	if entry, ok := p.readEntry(id); ok && entry.FileSize == size && entry.FileHash == hash {
		p.obs.Log().Info().Str("resume", id).Msg("reusing cached parse")
		return &model.Candidate{ID: id, Resume: entry.Resume, Fingerprint: hash}, nil
	}

	resume, err := p.parser.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume %s: %w", path, err)
	}
	if err := resume.Validate(); err != nil {
		return nil, fmt.Errorf("parsed resume %s invalid: %w", path, err)
	}

	if err := p.writeEntry(parsedEntry{
		ID:       id,
		FileSize: size,
		FileHash: hash,
		ParsedAt: time.Now().UTC(),
		Resume:   *resume,
	}); err != nil {
		// Caching the parse is best-effort; the candidate is still good.
		p.obs.Log().Warn().Str("resume", id).Err(err).Msg("failed to cache parse")
	}

	return &model.Candidate{ID: id, Resume: *resume, Fingerprint: hash}, nil
}

func (p *Pool) entryPath(id string) string {
	return filepath.Join(p.cacheDir, id+".json")
}

// readEntry loads a cached extraction. Corrupt entries are a miss.
func (p *Pool) readEntry(id string) (*parsedEntry, bool) {
	data, err := os.ReadFile(p.entryPath(id)) // #nosec G304
	if err != nil {
		return nil, false
	}
	var entry parsedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		p.obs.Log().Warn().Str("resume", id).Err(err).Msg("corrupt parse cache entry, reparsing")
		return nil, false
	}
	return &entry, true
}

func (p *Pool) writeEntry(entry parsedEntry) error {
	if err := os.MkdirAll(p.cacheDir, 0750); err != nil {
		return fmt.Errorf("failed to create parse cache dir: %w", err)
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parse cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(p.cacheDir, "."+entry.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp entry: %w", err)
	}
	if err := os.Rename(tmpName, p.entryPath(entry.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// ParseStates lists the cached extractions, for inspection tooling.
func (p *Pool) ParseStates() ([]ParseState, error) {
	files, err := os.ReadDir(p.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read parse cache: %w", err)
	}

	var states []ParseState
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, ok := p.readEntry(strings.TrimSuffix(f.Name(), ".json"))
		if !ok {
			continue
		}
		states = append(states, ParseState{ID: entry.ID, FileHash: entry.FileHash, ParsedAt: entry.ParsedAt})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states, nil
}

// ClearParsed removes every cached extraction and returns how many were
// removed.
func (p *Pool) ClearParsed() (int, error) {
	files, err := os.ReadDir(p.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read parse cache: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(p.cacheDir, f.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove entry: %w", err)
		}
		removed++
	}
	return removed, nil
}

func resumeID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
