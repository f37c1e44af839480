package service

import (
	"context"
	"errors"
	"fmt"

	"geoform/internal/atlas"
	"geoform/internal/form"
	"geoform/internal/metrics"

	"github.com/rs/zerolog/log"
)

var ErrValidationFailed = errors.New("service: form validation failed")

// FormClient interface for dependency injection
type FormClient interface {
	GetForm(ctx context.Context, id string) (*form.Definition, error)
	UpdateForm(ctx context.Context, id string, d *form.Definition) (*form.Definition, error)
}

// AtlasBuilder interface for dependency injection
type AtlasBuilder interface {
	BuildAtlas(ctx context.Context) (*atlas.Atlas, atlas.Stats, error)
}

// FormOptions selects the anchors and markers a regeneration works with.
type FormOptions struct {
	EntryAnchor    string
	ContinueAnchor string
	Markers        []string
	Strict         bool
}

func (o FormOptions) withDefaults() FormOptions {
	if o.EntryAnchor == "" {
		o.EntryAnchor = "E9"
	}
	if o.ContinueAnchor == "" {
		o.ContinueAnchor = "N1"
	}
	if len(o.Markers) == 0 {
		o.Markers = form.DefaultMarkers
	}
	return o
}

// Result is a regenerated form together with what happened to it.
type Result struct {
	Form      *form.Definition
	Stats     atlas.Stats
	Removed   int
	Questions int
	RootRef   string
	// Problems are reference and ordering defects. Untagged fields are
	// listed apart since they do not break the jump logic.
	Problems []form.Problem
	Untagged []form.Problem
}

// FormService regenerates the location questions of a form
type FormService struct {
	client   FormClient
	taxonomy AtlasBuilder
	gen      *form.Generator
	opts     FormOptions
}

// NewFormService creates a new form service. client may be nil for offline use.
func NewFormService(client FormClient, taxonomy AtlasBuilder, opts FormOptions, genOpts ...form.Option) *FormService {
	return &FormService{
		client:   client,
		taxonomy: taxonomy,
		gen:      form.NewGenerator(genOpts...),
		opts:     opts.withDefaults(),
	}
}

// Generate fetches form id, builds a fresh atlas and regenerates the form.
func (s *FormService) Generate(ctx context.Context, id string) (*Result, error) {
	if s.client == nil {
		return nil, fmt.Errorf("service: no form client configured")
	}
	base, err := s.client.GetForm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch form: %w", err)
	}
	return s.GenerateFrom(ctx, base)
}

// GenerateFrom regenerates a form that was already loaded.
func (s *FormService) GenerateFrom(ctx context.Context, base *form.Definition) (*Result, error) {
	a, stats, err := s.taxonomy.BuildAtlas(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Regenerate(base, a)
	if err != nil {
		return nil, err
	}
	res.Stats = stats
	return res, nil
}

// Regenerate replaces the location questions of base with questions for a.
// base is left untouched.
func (s *FormService) Regenerate(base *form.Definition, a *atlas.Atlas) (*Result, error) {
	d, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("service: failed to copy form: %w", err)
	}

	removed := form.RemoveLocationQuestions(d, s.opts.Markers)
	if err := form.StripVolatileIDs(d); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	anchors := form.ScanAnchors(d)
	continueRef, err := form.Anchor(anchors, s.opts.ContinueAnchor)
	if err != nil {
		return nil, fmt.Errorf("service: continue anchor: %w", err)
	}
	entryRef, err := form.Anchor(anchors, s.opts.EntryAnchor)
	if err != nil {
		return nil, fmt.Errorf("service: entry anchor: %w", err)
	}

	tree := s.gen.GenerateAtlas(a, continueRef)
	form.Merge(d, tree)
	untagged := form.OrderSections(d)
	form.WireEntry(d, entryRef, tree.RootRef)

	res := &Result{
		Form:      d,
		Removed:   removed,
		Questions: len(tree.Fields),
		RootRef:   tree.RootRef,
		Problems:  s.Diagnose(d),
		Untagged:  untagged,
	}
	for _, p := range untagged {
		metrics.ValidationProblemsTotal.WithLabelValues(string(p.Kind)).Inc()
		log.Warn().Str("ref", p.Ref).Str("title", p.Detail).Msg("service: field without section tag")
	}

	log.Info().
		Int("removed", removed).
		Int("questions", res.Questions).
		Int("problems", len(res.Problems)).
		Str("root", tree.RootRef).
		Msg("service: regenerated location questions")
	return res, nil
}

// Diagnose runs the reference and ordering checks on d.
func (s *FormService) Diagnose(d *form.Definition) []form.Problem {
	problems := append(form.Validate(d), form.CheckForward(d)...)
	for _, p := range problems {
		metrics.ValidationProblemsTotal.WithLabelValues(string(p.Kind)).Inc()
		log.Warn().Str("kind", string(p.Kind)).Str("ref", p.Ref).Msg(p.Detail)
	}
	return problems
}

// Save writes the regenerated form to path.
func (s *FormService) Save(path string, res *Result) error {
	if err := s.gate(res); err != nil {
		return err
	}
	if err := form.WriteFile(path, res.Form); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	log.Info().Str("path", path).Msg("service: wrote form")
	return nil
}

// Publish replaces form id with the regenerated form.
func (s *FormService) Publish(ctx context.Context, id string, res *Result) (*form.Definition, error) {
	if s.client == nil {
		return nil, fmt.Errorf("service: no form client configured")
	}
	if err := s.gate(res); err != nil {
		return nil, err
	}
	stored, err := s.client.UpdateForm(ctx, id, res.Form)
	if err != nil {
		return nil, fmt.Errorf("service: failed to upload form: %w", err)
	}
	log.Info().Str("form_id", id).Int("fields", len(stored.Fields)).Msg("service: uploaded form")
	return stored, nil
}

// Preview generates the location questions alone, falling through to continueRef.
func (s *FormService) Preview(ctx context.Context, continueRef string) (form.Tree, error) {
	a, _, err := s.taxonomy.BuildAtlas(ctx)
	if err != nil {
		return form.Tree{}, err
	}
	return s.gen.GenerateAtlas(a, continueRef), nil
}

func (s *FormService) gate(res *Result) error {
	if s.opts.Strict && len(res.Problems) > 0 {
		return fmt.Errorf("%w: %d problems, first: %s", ErrValidationFailed, len(res.Problems), res.Problems[0])
	}
	return nil
}
