package form

import "strings"

// SectionOrder lists the section letters in display order: contact,
// spokesperson, event, location, new location, final.
var SectionOrder = []string{"C", "S", "E", LocationSection, "N", "F"}

func sectionRank(section string) (int, bool) {
	for i, s := range SectionOrder {
		if strings.EqualFold(s, section) {
			return i, true
		}
	}
	return 0, false
}

// OrderSections regroups the fields of d by section in SectionOrder, keeping
// the relative order inside each section. Fields without a known section tag
// keep their position and are reported.
func OrderSections(d *Definition) []Problem {
	var problems []Problem
	buckets := make([][]Field, len(SectionOrder))
	fixed := make([]bool, len(d.Fields))

	for i, f := range d.Fields {
		rank, ok := sectionRank(f.Tag.Section)
		if f.Tag.IsZero() || !ok {
			fixed[i] = true
			problems = append(problems, Problem{Kind: ProblemUntagged, Ref: f.Ref, Detail: f.Title})
			continue
		}
		buckets[rank] = append(buckets[rank], f)
	}

	var ordered []Field
	for _, b := range buckets {
		ordered = append(ordered, b...)
	}

	out := make([]Field, len(d.Fields))
	next := 0
	for i := range d.Fields {
		if fixed[i] {
			out[i] = d.Fields[i]
			continue
		}
		out[i] = ordered[next]
		next++
	}
	d.Fields = out
	return problems
}
