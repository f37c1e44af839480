package form

import (
	"encoding/json"
	"fmt"

	"geoform/internal/atlas"

	"github.com/google/uuid"
)

const (
	// LocationSection tags every generated question.
	LocationSection = "L"
	// OtherLabel is the open-ended choice offered at city and venue level.
	OtherLabel = "== Other =="
)

// Tree is the output of one generation run.
type Tree struct {
	RootRef string
	Fields  []Field
	Logic   []Rule
}

// Generator turns an atlas into dependent dropdown questions.
type Generator struct {
	newRef func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithRefFunc replaces the random ref source, mainly for tests.
func WithRefFunc(f func() string) Option {
	return func(g *Generator) {
		g.newRef = f
	}
}

// NewGenerator creates a generator that issues random UUID refs.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{newRef: uuid.NewString}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateAtlas generates the questions for the whole atlas.
func (g *Generator) GenerateAtlas(a *atlas.Atlas, continueRef string) Tree {
	return g.Generate(atlas.Earth, a.Root(), continueRef)
}

// Generate walks root depth first, emitting one question per branch before
// the questions of its children. Every question jumps to the question of the
// chosen child when that child has children of its own and otherwise falls
// through to continueRef.
func (g *Generator) Generate(name string, root *atlas.Branch, continueRef string) Tree {
	var t Tree
	if root == nil || len(root.Children) == 0 {
		return t
	}
	t.RootRef = g.walk(&t, name, root, 1, continueRef)
	return t
}

func (g *Generator) walk(t *Tree, name string, b *atlas.Branch, depth int, continueRef string) string {
	ref := g.newRef()
	t.Fields = append(t.Fields, locationField(ref, name, b, depth))

	var actions []Action
	for _, child := range b.Names() {
		cb := b.Child(child)
		if cb == nil || len(cb.Children) == 0 {
			continue
		}
		childRef := g.walk(t, child, cb, depth+1, continueRef)
		actions = append(actions, Jump(childRef, Equal(ref, child)))
	}
	actions = append(actions, Jump(continueRef, Always()))

	t.Logic = append(t.Logic, Rule{Type: TargetField, Ref: ref, Actions: actions})
	return ref
}

func locationField(ref, name string, b *atlas.Branch, depth int) Field {
	tag := Tag{Section: LocationSection, Code: fmt.Sprintf("%s%d", LocationSection, depth)}

	choices := make([]Choice, 0, len(b.Children)+1)
	for _, child := range b.Names() {
		choices = append(choices, Choice{Label: child})
	}
	if b.Kind != atlas.Country && b.Kind != atlas.State {
		choices = append(choices, Choice{Label: OtherLabel})
	}

	return Field{
		Ref:   ref,
		Title: tag.Render(locationTitle(name, b.Kind, depth)),
		Type:  "dropdown",
		Tag:   tag,
		Properties: map[string]json.RawMessage{
			"alphabetical_order": raw(true),
			"randomize":          raw(false),
			"choices":            raw(choices),
		},
		Validations: map[string]json.RawMessage{
			"required": raw(true),
		},
	}
}

func locationTitle(name string, kind atlas.Kind, depth int) string {
	if depth == 1 && kind == atlas.Country {
		return "Which country is the event in?"
	}
	return fmt.Sprintf("Which %s in %s is the event in?", kind, name)
}

func raw(v any) json.RawMessage {
	b, err := marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
