package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/llm"
	"codeberg.org/snonux/shabda/internal/prompt"
	"codeberg.org/snonux/shabda/internal/sanitize"
	"codeberg.org/snonux/shabda/internal/validate"
	"codeberg.org/snonux/shabda/internal/vocab"
)

// Models maps the logical model names onto provider model ids
type Models struct {
	WordGeneration   string
	PhraseGeneration string // falls back to WordGeneration
	Translation      string // falls back to WordGeneration
}

func (m Models) generation(kind vocab.Kind) string {
	if kind != vocab.KindWords && m.PhraseGeneration != "" {
		return m.PhraseGeneration
	}
	return m.WordGeneration
}

func (m Models) translation() string {
	if m.Translation != "" {
		return m.Translation
	}
	return m.WordGeneration
}

// Config holds the pipeline settings
type Config struct {
	Models      Models
	WordCount   int
	PhraseCount int
	StrictDedup bool // drop entries that repeat an existing item
	MaxExisting int
}

// Request asks for one batch of new entries
type Request struct {
	Kind     vocab.Kind
	Existing []string // source field values already known, advisory
	Count    int      // overrides the configured count when positive
}

// Result is the outcome of a successful run
type Result struct {
	Kind       vocab.Kind
	Entries    []vocab.Entry
	Dropped    int // candidates that did not make it into Entries
	Mismatches []*MismatchError
	Trace      []State // states entered, in order
	Skipped    []State // states with nothing to do
}

// Pipeline runs the stages against one injected completer. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	completer llm.Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates a pipeline
func New(completer llm.Completer, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		completer: completer,
		cfg:       cfg,
		logger:    logger.Named("pipeline"),
	}
}

// Run generates, translates, romanizes and merges one batch
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	rec, ok := recipes[req.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown generation kind: %s", req.Kind)
	}

	r := p.newRun(req.Kind)
	source, err := r.generate(ctx, rec, req)
	if err != nil {
		return nil, r.fail(err)
	}

	return r.finish(ctx, rec, source, req.Existing)
}

// TranslateWords runs the words recipe from TRANSLATING on caller
// supplied English words
func (p *Pipeline) TranslateWords(ctx context.Context, words []string) (*Result, error) {
	source, err := validate.Text(words)
	if err != nil {
		return nil, fmt.Errorf("nothing to translate: %w", err)
	}

	r := p.newRun(vocab.KindWords)
	return r.finish(ctx, recipes[vocab.KindWords], source, nil)
}

// Romanize completes entries that already carry English and Odia text by
// running only ROMANIZING and MERGING
func (p *Pipeline) Romanize(ctx context.Context, entries []vocab.Entry) (*Result, error) {
	base := make([]vocab.Entry, len(entries))
	for i, e := range entries {
		base[i] = e.Trimmed()
		base[i].Odia = validate.Normalize(base[i].Odia)
	}

	r := p.newRun(vocab.KindWords)
	romanized, err := r.romanize(ctx, base)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateMerging)
	merged, m := Merge(vocab.AllFields, base, romanized)
	r.mismatch(m)

	out, err := validate.Entries(merged, vocab.AllFields)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateDone)
	r.result.Entries = out
	r.result.Dropped = len(entries) - len(out)
	return r.result, nil
}

// run is the state of one invocation
type run struct {
	p      *Pipeline
	kind   vocab.Kind
	state  State
	result *Result
	start  time.Time
}

func (p *Pipeline) newRun(kind vocab.Kind) *run {
	return &run{
		p:      p,
		kind:   kind,
		result: &Result{Kind: kind},
		start:  time.Now(),
	}
}

func (r *run) enter(s State) {
	r.state = s
	r.result.Trace = append(r.result.Trace, s)
	r.p.logger.Debug("entering state", zap.String("kind", string(r.kind)), zap.Stringer("state", s))
}

func (r *run) skip(s State) {
	r.result.Skipped = append(r.result.Skipped, s)
	r.p.logger.Debug("skipping state", zap.String("kind", string(r.kind)), zap.Stringer("state", s))
}

func (r *run) fail(err error) error {
	failed := r.state
	r.result.Trace = append(r.result.Trace, StateError)
	r.p.logger.Warn("pipeline failed",
		zap.String("kind", string(r.kind)),
		zap.Stringer("state", failed),
		zap.Duration("elapsed", time.Since(r.start)),
		zap.Error(err))
	return &StageError{State: failed, Err: err}
}

func (r *run) mismatch(m *MismatchError) {
	if m == nil {
		return
	}
	r.result.Mismatches = append(r.result.Mismatches, m)
	r.p.logger.Warn("positional mismatch", zap.String("kind", string(r.kind)), zap.Error(m))
}

// complete builds the prompt, calls the model and repairs the output
func (r *run) complete(ctx context.Context, task prompt.Task, model string, req prompt.Request) ([]byte, error) {
	req.MaxExisting = r.p.cfg.MaxExisting
	msgs, err := prompt.Build(task, req)
	if err != nil {
		return nil, err
	}

	raw, err := r.p.completer.Complete(ctx, model, msgs)
	if err != nil {
		return nil, err
	}

	text, strategy, err := sanitize.CleanWith(raw, sanitize.Strategies)
	if err != nil {
		r.p.logger.Debug("unrepairable response", zap.Stringer("task", task), zap.String("raw", raw))
		return nil, err
	}
	if strategy != "" {
		r.p.logger.Debug("response repaired", zap.Stringer("task", task), zap.String("strategy", strategy))
	}

	return []byte(text), nil
}

func (r *run) generate(ctx context.Context, rec recipe, req Request) ([]string, error) {
	r.enter(StateGeneratingSource)

	count := req.Count
	if count <= 0 {
		count = rec.count(r.p.cfg)
	}

	data, err := r.complete(ctx, rec.source, r.p.cfg.Models.generation(r.kind), prompt.Request{
		Existing: req.Existing,
		Count:    count,
	})
	if err != nil {
		return nil, err
	}

	result, err := vocab.Decode(rec.sourceShape, data)
	if err != nil {
		return nil, err
	}

	return rec.filterSource(sourceItems(result))
}

func sourceItems(result vocab.GenerationResult) []string {
	switch v := result.(type) {
	case vocab.WordList:
		return v
	case vocab.PhraseList:
		return v
	}
	return nil
}

func (r *run) translate(ctx context.Context, rec recipe, source []string) ([]vocab.Entry, error) {
	r.enter(StateTranslating)

	data, err := r.complete(ctx, rec.translate, r.p.cfg.Models.translation(), prompt.Request{Items: source})
	if err != nil {
		return nil, err
	}

	return records(data, rec.translated)
}

// romanize fills the romanized field for every position of base that has
// Odia text but no romanization. The returned layer has len(base) entries.
func (r *run) romanize(ctx context.Context, base []vocab.Entry) ([]vocab.Entry, error) {
	var (
		indices []int
		items   []string
	)
	for i, e := range base {
		if e.Has(vocab.FieldOdia) && !e.Has(vocab.FieldRomanized) {
			indices = append(indices, i)
			items = append(items, e.Odia)
		}
	}

	layer := make([]vocab.Entry, len(base))
	if len(items) == 0 {
		r.skip(StateRomanizing)
		return layer, nil
	}

	r.enter(StateRomanizing)

	data, err := r.complete(ctx, prompt.TaskRomanization, r.p.cfg.Models.translation(), prompt.Request{Items: items})
	if err != nil {
		return nil, err
	}

	romanized, err := records(data, vocab.FieldRomanized)
	if err != nil {
		return nil, err
	}

	if len(romanized) != len(indices) {
		r.mismatch(&MismatchError{
			State:   StateRomanizing,
			Lengths: []int{len(indices), len(romanized)},
			Kept:    min(len(indices), len(romanized)),
		})
	}
	for j := 0; j < len(indices) && j < len(romanized); j++ {
		layer[indices[j]].RomanizedOdia = romanized[j].RomanizedOdia
	}

	return layer, nil
}

func records(data []byte, want vocab.Field) ([]vocab.Entry, error) {
	result, err := vocab.Decode(vocab.ShapeTranslations, data)
	if err != nil {
		return nil, err
	}
	list, _ := result.(vocab.TranslationList)
	return validate.Records(list, want)
}

// finish runs TRANSLATING, ROMANIZING and MERGING on validated source items
func (r *run) finish(ctx context.Context, rec recipe, source []string, existing []string) (*Result, error) {
	translated, err := r.translate(ctx, rec, source)
	if err != nil {
		return nil, r.fail(err)
	}

	sourceLayer := vocab.FromValues(rec.sourceField, source)

	// romanize against what the first two layers already know
	known := make([]vocab.Entry, min(len(sourceLayer), len(translated)))
	for i := range known {
		known[i] = mergeOne(sourceLayer[i], translated[i])
	}
	romanized, err := r.romanize(ctx, known)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateMerging)
	merged, m := Merge(vocab.AllFields, sourceLayer, translated, romanized)
	r.mismatch(m)

	entries, err := validate.Entries(merged, vocab.AllFields)
	if err != nil {
		return nil, r.fail(err)
	}

	if r.p.cfg.StrictDedup {
		entries = dedup(entries, rec.sourceField, existing)
		if len(entries) == 0 {
			return nil, r.fail(&validate.EmptyResultError{Check: "dedup", Total: len(merged)})
		}
	}

	r.enter(StateDone)
	r.result.Entries = entries
	r.result.Dropped = len(source) - len(entries)

	r.p.logger.Info("pipeline done",
		zap.String("kind", string(r.kind)),
		zap.Int("entries", len(entries)),
		zap.Int("dropped", r.result.Dropped),
		zap.Duration("elapsed", time.Since(r.start)))

	return r.result, nil
}

func mergeOne(layers ...vocab.Entry) vocab.Entry {
	var e vocab.Entry
	for _, f := range entryFields {
		for _, l := range layers {
			if v := l.Get(f); v != "" {
				set(&e, f, v)
				break
			}
		}
	}
	return e
}

// IsEmptyResult reports whether err is, or wraps, an EmptyResultError
func IsEmptyResult(err error) bool {
	var empty *validate.EmptyResultError
	return errors.As(err, &empty)
}
