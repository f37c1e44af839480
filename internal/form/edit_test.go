package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Ref
	}
	return out
}

func TestRemoveLocationQuestions(t *testing.T) {
	d := loadBase(t)

	n := RemoveLocationQuestions(d, DefaultMarkers)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"contact-email", "new-location", "statement", "event-type", "spokesperson", "event-where", "final",
	}, refs(d.Fields))

	require.Len(t, d.Logic, 2)
	assert.Equal(t, "contact-email", d.Logic[0].Ref)
	assert.Equal(t, "spokesperson", d.Logic[1].Ref)
	assert.Equal(t, []Action{{
		Action:    "jump",
		Details:   Details{To: &Target{Type: TargetField, Value: "event-type"}},
		Condition: Always(),
	}}, d.Logic[1].Actions)

	assert.Empty(t, Validate(d))
}

func TestRemoveLocationQuestions_Idempotent(t *testing.T) {
	d := loadBase(t)
	RemoveLocationQuestions(d, DefaultMarkers)
	once, err := d.Clone()
	require.NoError(t, err)

	assert.Equal(t, 0, RemoveLocationQuestions(d, DefaultMarkers))
	assert.Equal(t, once, d)
}

func TestRemoveLocationQuestions_GeneratedOutput(t *testing.T) {
	d := loadBase(t)
	RemoveLocationQuestions(d, DefaultMarkers)
	before, err := d.Clone()
	require.NoError(t, err)

	tree := NewGenerator().Generate("USA", usa(), "new-location")
	Merge(d, tree)
	WireEntry(d, "event-where", tree.RootRef)

	assert.Equal(t, len(tree.Fields), RemoveLocationQuestions(d, DefaultMarkers))
	assert.Equal(t, before, d)
}

func TestStripVolatileIDs(t *testing.T) {
	d := loadBase(t)

	require.NoError(t, StripVolatileIDs(d))

	for _, f := range d.Fields {
		assert.Empty(t, f.ID, f.Ref)
		for _, c := range f.Choices() {
			assert.Empty(t, c.ID, f.Ref)
		}
	}
	assert.Equal(t, []Choice{{Ref: "strike", Label: "Strike"}, {Ref: "rally", Label: "Rally"}}, d.Fields[3].Choices())
	assert.Equal(t, "event-type", d.Fields[3].Ref)
}

const groupForm = `{
  "fields": [
    {"id": "g1", "ref": "details", "title": "[E1] Event details", "type": "group", "properties": {"fields": [
      {"id": "n1", "ref": "event-kind", "title": "[E2] Kind?", "type": "multiple_choice",
        "properties": {"choices": [{"id": "c1", "ref": "strike", "label": "Strike"}]}},
      {"id": "n2", "ref": "where-city", "title": "[L2] Which city?", "type": "dropdown",
        "properties": {"choices": [{"id": "c2", "label": "Lund"}]}}
    ]}},
    {"id": "g2", "ref": "old-places", "title": "[L1] Places", "type": "group", "properties": {"fields": [
      {"id": "n3", "ref": "old-venue", "title": "Venue?", "type": "short_text"}
    ]}},
    {"id": "f1", "ref": "final", "title": "[F1] Thanks", "type": "statement"}
  ],
  "logic": [
    {"type": "field", "ref": "event-kind", "actions": [
      {"action": "jump", "details": {"to": {"type": "field", "value": "where-city"}},
        "condition": {"op": "always", "vars": []}},
      {"action": "jump", "details": {"to": {"type": "field", "value": "final"}},
        "condition": {"op": "is", "vars": [{"type": "field", "value": "old-venue"}, {"type": "constant", "value": "x"}]}}
    ]},
    {"type": "field", "ref": "where-city", "actions": [
      {"action": "jump", "details": {"to": {"type": "field", "value": "final"}}, "condition": {"op": "always", "vars": []}}
    ]}
  ]
}`

func TestRemoveLocationQuestions_Groups(t *testing.T) {
	d, err := Decode(strings.NewReader(groupForm))
	require.NoError(t, err)

	n := RemoveLocationQuestions(d, DefaultMarkers)

	// where-city inside details, plus old-places and its nested old-venue.
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"details", "final"}, refs(d.Fields))
	nested, err := nestedFields(d.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"event-kind"}, refs(nested))
	assert.Empty(t, d.Logic)

	assert.Equal(t, 0, RemoveLocationQuestions(d, DefaultMarkers))
}

func TestStripVolatileIDs_Groups(t *testing.T) {
	d, err := Decode(strings.NewReader(groupForm))
	require.NoError(t, err)

	require.NoError(t, StripVolatileIDs(d))

	nested, err := nestedFields(d.Fields[0])
	require.NoError(t, err)
	require.Len(t, nested, 2)
	for _, f := range nested {
		assert.Empty(t, f.ID, f.Ref)
		for _, c := range f.Choices() {
			assert.Empty(t, c.ID, f.Ref)
		}
	}
	assert.Equal(t, []Choice{{Ref: "strike", Label: "Strike"}}, nested[0].Choices())
	assert.Equal(t, "[E2] Kind?", nested[0].Title)
}

func TestStripVolatileIDs_BadGroup(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"fields": [{"ref": "g", "title": "G", "type": "group", "properties": {"fields": {"ref": "x"}}}]}`))
	require.NoError(t, err)

	assert.Error(t, StripVolatileIDs(d))
	assert.Equal(t, 0, RemoveLocationQuestions(d, DefaultMarkers))
}

func TestScanAnchors(t *testing.T) {
	d := loadBase(t)
	anchors := ScanAnchors(d)

	assert.Equal(t, "event-where", anchors["E9"])
	assert.Equal(t, "new-location", anchors["N1"])
	assert.NotContains(t, anchors, "")

	ref, err := Anchor(anchors, "N1")
	require.NoError(t, err)
	assert.Equal(t, "new-location", ref)

	_, err = Anchor(anchors, "Z9")
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestWireEntry(t *testing.T) {
	tests := []struct {
		name     string
		logic    []Rule
		expected []Action
	}{
		{
			name:     "creates rule",
			expected: []Action{Jump("root", Always())},
		},
		{
			name: "replaces fallback and keeps conditions",
			logic: []Rule{{Type: TargetField, Ref: "anchor", Actions: []Action{
				Jump("other", Equal("anchor", "yes")),
				Jump("stale", Always()),
			}}},
			expected: []Action{
				Jump("other", Equal("anchor", "yes")),
				Jump("root", Always()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Definition{Fields: []Field{{Ref: "anchor"}}, Logic: tt.logic}
			WireEntry(d, "anchor", "root")

			require.Len(t, d.Logic, 1)
			assert.Equal(t, "anchor", d.Logic[0].Ref)
			assert.Equal(t, tt.expected, d.Logic[0].Actions)
		})
	}
}

func TestWireEntry_NoRoot(t *testing.T) {
	d := &Definition{}
	WireEntry(d, "anchor", "")
	assert.Empty(t, d.Logic)
}
