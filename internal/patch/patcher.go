package patch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/logger"
	"github.com/google/uuid"
	"github.com/viant/afs"
)

const defaultFileMode os.FileMode = 0644

// Options tune a single Patch run. The zero value reads, applies every
// rule and writes the result.
type Options struct {
	// DryRun computes the report without writing the file.
	DryRun bool
	// Strict fails the run, before writing, if any rule changed nothing.
	Strict bool
}

// Report describes one Patch run.
type Report struct {
	RunID     string       `json:"run_id"`
	Path      string       `json:"path"`
	Results   []RuleResult `json:"results"`
	Changed   bool         `json:"changed"`
	Written   bool         `json:"written"`
	BeforeSum string       `json:"before_sha256"`
	AfterSum  string       `json:"after_sha256"`
	StartedAt time.Time    `json:"started_at"`
}

// Matched returns the number of rules that changed the text.
func (r *Report) Matched() int {
	n := 0
	for _, res := range r.Results {
		if res.Matched {
			n++
		}
	}
	return n
}

// Recorder persists completed runs.
type Recorder interface {
	Record(ctx context.Context, report *Report) error
}

// Patcher reads a file, applies its rules in order and writes it back.
type Patcher struct {
	fs       afs.Service
	rules    []Rule
	recorder Recorder
}

// New compiles rules and returns a Patcher using the local filesystem.
func New(rules []Rule) (*Patcher, error) {
	compiled := make([]Rule, len(rules))
	copy(compiled, rules)
	for i := range compiled {
		if err := compiled[i].Compile(); err != nil {
			return nil, err
		}
	}
	return &Patcher{fs: afs.New(), rules: compiled}, nil
}

// WithRecorder sets the journal that receives every completed run.
func (p *Patcher) WithRecorder(r Recorder) *Patcher {
	p.recorder = r
	return p
}

// Rules returns the compiled rules in application order.
func (p *Patcher) Rules() []Rule {
	return p.rules
}

// Transform applies every rule to text in order, each rule seeing the
// output of the one before it.
func (p *Patcher) Transform(text string) (string, []RuleResult, error) {
	results := make([]RuleResult, 0, len(p.rules))
	for i := range p.rules {
		out, res, err := p.rules[i].Apply(text)
		if err != nil {
			return text, results, err
		}
		logger.Debug("Rule evaluated", "rule", res.Name, "kind", res.Kind, "matched", res.Matched, "count", res.Count)
		results = append(results, res)
		text = out
	}
	return text, results, nil
}

// Patch rewrites the file at path. Read and write failures are returned
// wrapped; the file is left untouched when reading, transforming or a
// strict check fails. No backup of the original is kept.
func (p *Patcher) Patch(ctx context.Context, path string, opts Options) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Path:      path,
		StartedAt: time.Now(),
	}
	log := logger.WithComponent("patch").With("run_id", report.RunID, "path", path)

	// afs replaces the destination (remove, then create), which would turn a
	// symlink into a regular file and leave its target unpatched. Resolve it
	// first so the link's target is rewritten. Hard links still lose their
	// shared inode: the rewritten file is a new inode at the resolved path.
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	data, mode, err := p.read(ctx, resolved)
	if err != nil {
		return nil, err
	}
	before := string(data)

	after, results, err := p.Transform(before)
	report.Results = results
	if err != nil {
		return report, err
	}

	if opts.Strict {
		for _, res := range results {
			if !res.Matched {
				return report, fmt.Errorf("%s: %w", res.Name, ErrRuleNotMatched)
			}
		}
	}

	report.Changed = after != before
	report.BeforeSum = checksum(data)
	report.AfterSum = checksum([]byte(after))

	if !opts.DryRun {
		if err := p.fs.Upload(ctx, resolved, mode, bytes.NewReader([]byte(after))); err != nil {
			return report, fmt.Errorf("failed to write %s: %w", path, err)
		}
		report.Written = true
	}

	log.Info("Patch run complete",
		"rules", len(results), "matched", report.Matched(),
		"changed", report.Changed, "written", report.Written)

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, report); err != nil {
			log.Warn("Failed to record patch run", "error", err)
		}
	}
	return report, nil
}

func (p *Patcher) read(ctx context.Context, path string) ([]byte, os.FileMode, error) {
	rc, err := p.fs.OpenURL(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mode := defaultFileMode
	if obj, err := p.fs.Object(ctx, path); err == nil && obj.Mode().Perm() != 0 {
		mode = obj.Mode().Perm()
	}
	return data, mode, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
