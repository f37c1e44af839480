package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultMarkers select the questions left behind by an earlier generation run.
var DefaultMarkers = []string{"[" + LocationSection}

var ErrAnchorNotFound = errors.New("anchor question not found")

// RemoveLocationQuestions deletes every field whose title starts with one of
// markers, the rules they own, and every action elsewhere that jumps to them
// or tests their answer. Fields nested in a group are searched too; removing
// a group removes its nested fields with it. Rules left without actions are
// dropped. It returns the number of fields removed. A group whose nested
// fields cannot be decoded is left as is; StripVolatileIDs reports it.
func RemoveLocationQuestions(d *Definition, markers []string) int {
	removed := make(map[string]bool)
	d.Fields = removeMarked(d.Fields, markers, removed)
	if len(removed) == 0 {
		return 0
	}

	logic := d.Logic[:0]
	for _, r := range d.Logic {
		if removed[r.Ref] {
			continue
		}
		actions := r.Actions[:0]
		for _, a := range r.Actions {
			if actionReferences(a, removed) {
				continue
			}
			actions = append(actions, a)
		}
		if len(actions) == 0 {
			continue
		}
		r.Actions = actions
		logic = append(logic, r)
	}
	d.Logic = logic
	return len(removed)
}

func removeMarked(fields []Field, markers []string, removed map[string]bool) []Field {
	out := fields[:0]
	for _, f := range fields {
		if hasMarker(f.Title, markers) {
			markRemoved(f, removed)
			continue
		}
		if nested, err := nestedFields(f); err == nil && nested != nil {
			n := len(nested)
			if kept := removeMarked(nested, markers, removed); len(kept) != n {
				if err := setNestedFields(&f, kept); err != nil {
					panic(err)
				}
			}
		}
		out = append(out, f)
	}
	return out
}

func markRemoved(f Field, removed map[string]bool) {
	removed[f.Ref] = true
	nested, _ := nestedFields(f)
	for _, n := range nested {
		markRemoved(n, removed)
	}
}

// nestedFields decodes the fields of a group, or returns nil for any other field.
func nestedFields(f Field) ([]Field, error) {
	raw, ok := f.Properties["fields"]
	if !ok {
		return nil, nil
	}
	fields := []Field{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("form: field %s: failed to decode nested fields: %w", f.Ref, err)
	}
	return fields, nil
}

func setNestedFields(f *Field, fields []Field) error {
	data, err := marshal(fields)
	if err != nil {
		return fmt.Errorf("form: field %s: failed to encode nested fields: %w", f.Ref, err)
	}
	f.Properties["fields"] = data
	return nil
}

func hasMarker(title string, markers []string) bool {
	title = strings.TrimSpace(title)
	for _, m := range markers {
		if strings.HasPrefix(title, m) {
			return true
		}
	}
	return false
}

func actionReferences(a Action, refs map[string]bool) bool {
	if to := a.Details.To; to != nil && to.Type == TargetField && refs[to.Value] {
		return true
	}
	if t := a.Details.Target; t != nil && varReferences([]Var{*t}, refs) {
		return true
	}
	return varReferences(a.Condition.Vars, refs)
}

func varReferences(vars []Var, refs map[string]bool) bool {
	for _, v := range vars {
		if v.Type == TargetField {
			if ref, ok := v.Text(); ok && refs[ref] {
				return true
			}
		}
		if varReferences(v.Vars, refs) {
			return true
		}
	}
	return false
}

// StripVolatileIDs clears the ids the form service assigns to fields and
// choices, including those nested in groups, so an update is keyed by refs alone.
func StripVolatileIDs(d *Definition) error {
	return stripIDs(d.Fields)
}

func stripIDs(fields []Field) error {
	for i := range fields {
		f := &fields[i]
		f.ID = ""
		if raw, ok := f.Properties["choices"]; ok {
			var choices []map[string]json.RawMessage
			if err := json.Unmarshal(raw, &choices); err != nil {
				return fmt.Errorf("form: field %s: failed to decode choices: %w", f.Ref, err)
			}
			for _, c := range choices {
				delete(c, "id")
			}
			data, err := marshal(choices)
			if err != nil {
				return fmt.Errorf("form: field %s: failed to encode choices: %w", f.Ref, err)
			}
			f.Properties["choices"] = data
		}

		nested, err := nestedFields(*f)
		if err != nil {
			return err
		}
		if nested == nil {
			continue
		}
		if err := stripIDs(nested); err != nil {
			return err
		}
		if err := setNestedFields(f, nested); err != nil {
			return err
		}
	}
	return nil
}

// ScanAnchors maps each title token, such as "E9", to the ref of the first
// field carrying it.
func ScanAnchors(d *Definition) map[string]string {
	anchors := make(map[string]string)
	for _, f := range d.Fields {
		if f.Tag.IsZero() {
			continue
		}
		if _, ok := anchors[f.Tag.Code]; !ok {
			anchors[f.Tag.Code] = f.Ref
		}
	}
	return anchors
}

// Anchor looks up the ref of an anchor token.
func Anchor(anchors map[string]string, code string) (string, error) {
	ref, ok := anchors[code]
	if !ok || ref == "" {
		return "", fmt.Errorf("%w: [%s]", ErrAnchorNotFound, code)
	}
	return ref, nil
}

// Merge appends a generated tree to d.
func Merge(d *Definition, t Tree) {
	d.Fields = append(d.Fields, t.Fields...)
	d.Logic = append(d.Logic, t.Logic...)
}

// WireEntry makes the entry anchor fall through to the first location
// question. Any unconditional action already on the anchor is replaced;
// conditional actions keep precedence.
func WireEntry(d *Definition, anchorRef, rootRef string) {
	if rootRef == "" {
		return
	}
	for i := range d.Logic {
		r := &d.Logic[i]
		if r.Ref != anchorRef {
			continue
		}
		actions := r.Actions[:0]
		for _, a := range r.Actions {
			if a.Condition.Op != OpAlways {
				actions = append(actions, a)
			}
		}
		r.Actions = append(actions, Jump(rootRef, Always()))
		return
	}
	d.Logic = append(d.Logic, Rule{
		Type:    TargetField,
		Ref:     anchorRef,
		Actions: []Action{Jump(rootRef, Always())},
	})
}
