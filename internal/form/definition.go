package form

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// Definition is a hosted form. Fields, logic and thank-you screens are
// decoded; every other top-level section (title, theme, workspace, settings,
// welcome screens) is carried through untouched.
type Definition struct {
	ID              string
	Fields          []Field
	Logic           []Rule
	ThankyouScreens []json.RawMessage

	extra map[string]json.RawMessage
}

var definitionKeys = []string{"id", "fields", "logic", "thankyou_screens"}

func (d *Definition) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = Definition{}
	if err := decodeOptional(m, "id", &d.ID); err != nil {
		return err
	}
	if err := decodeOptional(m, "fields", &d.Fields); err != nil {
		return err
	}
	if err := decodeOptional(m, "logic", &d.Logic); err != nil {
		return err
	}
	if err := decodeOptional(m, "thankyou_screens", &d.ThankyouScreens); err != nil {
		return err
	}
	for i := range d.ThankyouScreens {
		d.ThankyouScreens[i] = compact(d.ThankyouScreens[i])
	}
	for _, k := range definitionKeys {
		delete(m, k)
	}
	d.extra = compactAll(m)
	return nil
}

func (d Definition) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.extra)+len(definitionKeys))
	for k, v := range d.extra {
		m[k] = v
	}
	if d.ID != "" {
		m["id"] = d.ID
	}
	m["fields"] = nonNil(d.Fields)
	m["logic"] = nonNil(d.Logic)
	if d.ThankyouScreens != nil {
		m["thankyou_screens"] = d.ThankyouScreens
	}
	return marshal(m)
}

// Section returns a preserved top-level section by key.
func (d *Definition) Section(key string) (json.RawMessage, bool) {
	v, ok := d.extra[key]
	return v, ok
}

// SetSection stores a top-level section that the generator does not manage.
func (d *Definition) SetSection(key string, v json.RawMessage) {
	if d.extra == nil {
		d.extra = make(map[string]json.RawMessage)
	}
	d.extra[key] = compact(v)
}

// Clone returns a deep copy.
func (d *Definition) Clone() (*Definition, error) {
	data, err := marshal(d)
	if err != nil {
		return nil, err
	}
	out := &Definition{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldIndex maps each field ref to its position in Fields.
func (d *Definition) FieldIndex() map[string]int {
	idx := make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		idx[f.Ref] = i
	}
	return idx
}

// Field is one question of the form.
type Field struct {
	ID          string                     `json:"id,omitempty"`
	Ref         string                     `json:"ref,omitempty"`
	Title       string                     `json:"title"`
	Type        string                     `json:"type"`
	Properties  map[string]json.RawMessage `json:"properties,omitempty"`
	Validations map[string]json.RawMessage `json:"validations,omitempty"`

	// Tag is the section classifier. It is derived from the title prefix
	// when a form is decoded and set directly by the generator.
	Tag Tag `json:"-"`

	extra map[string]json.RawMessage
}

type fieldJSON Field

var fieldKeys = []string{"id", "ref", "title", "type", "properties", "validations"}

func (f *Field) UnmarshalJSON(data []byte) error {
	var a fieldJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, k := range fieldKeys {
		delete(m, k)
	}
	*f = Field(a)
	f.Properties = compactAll(f.Properties)
	f.Validations = compactAll(f.Validations)
	f.Tag, _ = ParseTag(f.Title)
	if len(m) > 0 {
		f.extra = compactAll(m)
	}
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	data, err := marshal(fieldJSON(f))
	if err != nil || len(f.extra) == 0 {
		return data, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, v := range f.extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return marshal(m)
}

// Choice is one option of a dropdown or multiple choice field.
type Choice struct {
	ID    string `json:"id,omitempty"`
	Ref   string `json:"ref,omitempty"`
	Label string `json:"label"`
}

// Choices decodes properties.choices.
func (f *Field) Choices() []Choice {
	raw, ok := f.Properties["choices"]
	if !ok {
		return nil
	}
	var choices []Choice
	if err := json.Unmarshal(raw, &choices); err != nil {
		return nil
	}
	return choices
}

// ChoiceLabels returns the label of every choice in order.
func (f *Field) ChoiceLabels() []string {
	choices := f.Choices()
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	return labels
}

// Tag classifies a field into a section. Code is the full bracketed token
// of the title, such as "L3"; Section is its leading letter.
type Tag struct {
	Section string
	Code    string
}

var tagPattern = regexp.MustCompile(`^\s*\[([A-Za-z])([^\]]*)\]`)

// ParseTag reads the leading "[X...]" token of a title.
func ParseTag(title string) (Tag, bool) {
	m := tagPattern.FindStringSubmatch(title)
	if m == nil {
		return Tag{}, false
	}
	return Tag{Section: m[1], Code: m[1] + m[2]}, true
}

// Render prefixes text with the token of t.
func (t Tag) Render(text string) string {
	if t.Code == "" {
		return text
	}
	return "[" + t.Code + "] " + text
}

// IsZero reports whether t carries no tag.
func (t Tag) IsZero() bool {
	return t.Code == ""
}

// Rule is the jump logic owned by one field.
type Rule struct {
	Type    string   `json:"type"`
	Ref     string   `json:"ref"`
	Actions []Action `json:"actions"`
}

// Action is one step of a rule, taken when Condition holds.
type Action struct {
	Action    string    `json:"action"`
	Details   Details   `json:"details"`
	Condition Condition `json:"condition"`
}

type Details struct {
	To     *Target `json:"to,omitempty"`
	Target *Var    `json:"target,omitempty"`
	Value  *Var    `json:"value,omitempty"`
}

// Target is where a jump lands: a field ref or a thank-you screen ref.
type Target struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Condition struct {
	Op   string `json:"op"`
	Vars []Var  `json:"vars"`
}

// Var is an operand of a condition. Nested conditions use Op and Vars.
type Var struct {
	Type  string          `json:"type,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Op    string          `json:"op,omitempty"`
	Vars  []Var           `json:"vars,omitempty"`
}

func (v *Var) UnmarshalJSON(data []byte) error {
	type varJSON Var
	var a varJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = Var(a)
	if v.Value != nil {
		v.Value = compact(v.Value)
	}
	return nil
}

// Text returns the value as a string when it is a JSON string.
func (v Var) Text() (string, bool) {
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

const (
	TargetField    = "field"
	TargetThankyou = "thankyou"

	OpEqual  = "equal"
	OpAlways = "always"
)

// FieldVar references the answer of the field with ref.
func FieldVar(ref string) Var {
	return Var{Type: TargetField, Value: mustString(ref)}
}

// ConstVar is a constant string operand.
func ConstVar(s string) Var {
	return Var{Type: "constant", Value: mustString(s)}
}

// Jump builds a jump action to a field.
func Jump(toRef string, cond Condition) Action {
	return Action{
		Action:    "jump",
		Details:   Details{To: &Target{Type: TargetField, Value: toRef}},
		Condition: cond,
	}
}

// Always is the condition of an unconditional action.
func Always() Condition {
	return Condition{Op: OpAlways, Vars: []Var{}}
}

// Equal holds when the answer of field ref equals value.
func Equal(ref, value string) Condition {
	return Condition{Op: OpEqual, Vars: []Var{FieldVar(ref), ConstVar(value)}}
}

func mustString(s string) json.RawMessage {
	b, _ := marshal(s)
	return b
}

func decodeOptional(m map[string]json.RawMessage, key string, v any) error {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// marshal is json.Marshal without HTML escaping, so preserved text such as
// "Rock & Roll <3" is written back byte for byte.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func compactAll(m map[string]json.RawMessage) map[string]json.RawMessage {
	for k, v := range m {
		m[k] = compact(v)
	}
	return m
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
