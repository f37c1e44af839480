package form

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"geoform/internal/atlas"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBase(t *testing.T) *Definition {
	t.Helper()
	d, err := ReadFile(filepath.Join("testdata", "base_form.json"))
	require.NoError(t, err)
	return d
}

func TestDecode_BaseForm(t *testing.T) {
	d := loadBase(t)

	assert.Equal(t, "DFFFuY", d.ID)
	assert.Len(t, d.Fields, 9)
	assert.Len(t, d.Logic, 4)
	assert.Len(t, d.ThankyouScreens, 1)

	title, ok := d.Section("title")
	require.True(t, ok)
	assert.JSONEq(t, `"Register your climate strike"`, string(title))

	for _, key := range []string{"workspace", "theme", "settings", "welcome_screens"} {
		_, ok := d.Section(key)
		assert.True(t, ok, key)
	}

	e1 := d.Fields[3]
	assert.Equal(t, Tag{Section: "E", Code: "E1"}, e1.Tag)
	assert.Equal(t, []string{"Strike", "Rally"}, e1.ChoiceLabels())
	assert.True(t, d.Fields[2].Tag.IsZero())
}

func TestEncode_PreservesStaticSections(t *testing.T) {
	original, err := os.ReadFile(filepath.Join("testdata", "base_form.json"))
	require.NoError(t, err)

	d := loadBase(t)
	var out bytes.Buffer
	require.NoError(t, Encode(&out, d))

	var want, got map[string]any
	require.NoError(t, json.Unmarshal(original, &want))
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	d := loadBase(t)
	tree := NewGenerator(WithRefFunc(seqRefs())).Generate("Sweden", sweden(), "new-location")
	Merge(d, tree)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	require.NoError(t, WriteFile(first, d))
	back, err := ReadFile(first)
	require.NoError(t, err)
	require.NoError(t, WriteFile(second, back))

	if diff := cmp.Diff(d.Fields, back.Fields, cmp.AllowUnexported(Field{})); diff != "" {
		t.Errorf("fields changed across round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(d.Logic, back.Logic); diff != "" {
		t.Errorf("logic changed across round trip (-want +got):\n%s", diff)
	}

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.True(t, bytes.HasSuffix(a, []byte("}\n")))
	assert.Contains(t, string(a), "\n  \"fields\": [\n")
}

func TestEncode_KeepsMarkupCharacters(t *testing.T) {
	const in = `{"id":"x","title":"Rock & Roll <3","welcome_screens":[{"title":"A & B > C"}],` +
		`"fields":[{"ref":"f","title":"[C1] Q & A <b>","type":"short_text","properties":{"description":"x > y"}}],"logic":[]}`

	d, err := Decode(bytes.NewReader([]byte(in)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, d))
	out := buf.String()
	for _, want := range []string{`"Rock & Roll <3"`, `"A & B > C"`, `"[C1] Q & A <b>"`, `"x > y"`} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, `\u0026`)
	assert.NotContains(t, out, `\u003c`)

	c, err := d.Clone()
	require.NoError(t, err)
	title, ok := c.Section("title")
	require.True(t, ok)
	assert.Equal(t, `"Rock & Roll <3"`, string(title))
	assert.Equal(t, d, c)

	tree := NewGenerator(WithRefFunc(seqRefs())).Generate("Earth", &atlas.Branch{Kind: atlas.Country, Children: map[string]atlas.Node{
		"Trinidad & Tobago": atlas.Leaf{},
	}}, "next")
	require.Len(t, tree.Fields, 1)
	assert.Contains(t, string(tree.Fields[0].Properties["choices"]), `"Trinidad & Tobago"`)
}

func TestField_KeepsUnknownKeys(t *testing.T) {
	d := loadBase(t)

	data, err := json.Marshal(d.Fields[3])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"attachment":{"type":"image","href":"https://images.typeform.com/images/strike"}`)
}

func TestDefinition_Clone(t *testing.T) {
	d := loadBase(t)
	c, err := d.Clone()
	require.NoError(t, err)

	c.Fields[0].Title = "changed"
	c.Logic = nil
	assert.Equal(t, "[C1] What is your email address?", d.Fields[0].Title)
	assert.Len(t, d.Logic, 4)
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		title    string
		expected Tag
		ok       bool
	}{
		{title: "[L3] Which city in Texas is the event in?", expected: Tag{Section: "L", Code: "L3"}, ok: true},
		{title: "[E9] Where?", expected: Tag{Section: "E", Code: "E9"}, ok: true},
		{title: "  [N] New location", expected: Tag{Section: "N", Code: "N"}, ok: true},
		{title: "No tag here", ok: false},
		{title: "[] Empty", ok: false},
		{title: "[3L] Digit first", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			tag, ok := ParseTag(tt.title)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, tag)
		})
	}
}

func TestTag_Render(t *testing.T) {
	assert.Equal(t, "[L2] Which?", Tag{Section: "L", Code: "L2"}.Render("Which?"))
	assert.Equal(t, "Which?", Tag{}.Render("Which?"))
}
