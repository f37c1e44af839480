package atlas

import (
	"errors"
	"fmt"
	"strings"

	"geoform/internal/models"
)

// Earth is the name of the root node.
const Earth = "Earth"

var (
	ErrMissingTown    = errors.New("missing town")
	ErrUnknownCountry = errors.New("unknown country")
	ErrKindConflict   = errors.New("kind conflict")
	ErrBuilderClosed  = errors.New("builder closed")
)

// Stats summarizes a batch of ingested reports.
type Stats struct {
	Accepted int
	Skipped  map[string]int
}

// SkippedTotal returns the number of reports that were dropped.
func (s Stats) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Builder folds raw reports into a seeded tree. A Builder is single use:
// once Atlas has been called it rejects further reports.
type Builder struct {
	tables *Tables
	root   *Branch
	closed bool
}

// NewBuilder seeds a fresh tree from the tables.
func NewBuilder(tables *Tables) *Builder {
	root := newBranch(Country)
	for _, c := range tables.Countries {
		root.Children[c] = Leaf{}
	}
	for country, states := range tables.States {
		b := newBranch(State)
		for _, s := range states {
			b.Children[s] = Leaf{}
		}
		root.Children[country] = b
	}
	return &Builder{tables: tables, root: root}
}

// IngestAll folds every report in and counts the ones it had to skip.
func (b *Builder) IngestAll(reports []models.RawReport) Stats {
	return b.IngestEach(reports, nil)
}

// IngestEach is IngestAll with a hook called after each report, in order.
// err is nil for an accepted report. fn may be nil.
func (b *Builder) IngestEach(reports []models.RawReport, fn func(r models.RawReport, err error)) Stats {
	stats := Stats{Skipped: make(map[string]int)}
	for _, r := range reports {
		err := b.Ingest(r)
		if err != nil {
			stats.Skipped[SkipReason(err)]++
		} else {
			stats.Accepted++
		}
		if fn != nil {
			fn(r, err)
		}
	}
	return stats
}

// SkipReason names the sentinel behind an Ingest error.
func SkipReason(err error) string {
	for _, e := range []error{ErrMissingTown, ErrUnknownCountry, ErrKindConflict, ErrBuilderClosed} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "other"
}

// Ingest folds a single report into the tree. Reports that cannot be placed
// return an error wrapping one of the Err* sentinels and leave the tree as is.
// Detail already recorded is never removed.
func (b *Builder) Ingest(r models.RawReport) error {
	if b.closed {
		return ErrBuilderClosed
	}

	rawCountry, rawState := splitCountry(r.Country)
	country, ok := b.resolveCountry(rawCountry)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, rawCountry)
	}

	countryNode, _ := b.root.Children[country].(*Branch)
	state := ""
	if rawState != "" {
		if countryNode != nil && countryNode.Kind != State {
			return fmt.Errorf("%w: %s holds %s, report names state %q", ErrKindConflict, country, countryNode.Kind, rawState)
		}
		state = b.resolveState(country, countryNode, rawState)
	} else if countryNode != nil && countryNode.Kind != City {
		return fmt.Errorf("%w: %s holds %s, report names none", ErrKindConflict, country, countryNode.Kind)
	}

	city, venue := splitTown(r.Town,
		b.countryQualifier(country),
		b.stateQualifier(country, state))
	if city == "" {
		return fmt.Errorf("%w: %q", ErrMissingTown, r.Town)
	}

	var parent *Branch
	if state != "" {
		parent = promote(promote(b.root, country, State), state, City)
	} else {
		parent = promote(b.root, country, City)
	}

	if venue != "" {
		promote(parent, city, Venue).add(venue)
		return nil
	}
	parent.add(city)
	return nil
}

// Atlas hands the finished tree over and closes the builder.
func (b *Builder) Atlas() *Atlas {
	b.closed = true
	return &Atlas{root: b.root}
}

func (b *Builder) resolveCountry(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if _, ok := b.root.Children[raw]; ok {
		return raw, true
	}
	canonical, ok := b.tables.CountryAlias(raw)
	if !ok {
		return "", false
	}
	if _, ok := b.root.Children[canonical]; !ok {
		return "", false
	}
	return canonical, true
}

func (b *Builder) resolveState(country string, countryNode *Branch, raw string) string {
	if countryNode != nil {
		if _, ok := countryNode.Children[raw]; ok {
			return raw
		}
	}
	if canonical, ok := b.tables.StateAlias(country, raw); ok {
		return canonical
	}
	return raw
}

// qualifier grades how surely a town segment just repeats a country or state.
type qualifier int

const (
	notQualifier qualifier = iota
	// aliasQualifier matches through a name alias, which a city may share.
	aliasQualifier
	// exactQualifier matches the canonical name or the state code.
	exactQualifier
)

// countryQualifier grades a town segment against the country.
func (b *Builder) countryQualifier(country string) func(string) qualifier {
	return func(seg string) qualifier {
		if strings.EqualFold(seg, country) {
			return exactQualifier
		}
		if c, ok := b.tables.CountryAlias(seg); ok && c == country {
			return aliasQualifier
		}
		return notQualifier
	}
}

// stateQualifier grades a town segment against the state. For "NY-New York"
// the code "NY" is exact while "New York" is only an alias.
func (b *Builder) stateQualifier(country, state string) func(string) qualifier {
	code, _, _ := strings.Cut(state, "-")
	return func(seg string) qualifier {
		if state == "" {
			return notQualifier
		}
		if strings.EqualFold(seg, state) || strings.EqualFold(seg, code) {
			return exactQualifier
		}
		if s, ok := b.tables.StateAlias(country, seg); ok && s == state {
			return aliasQualifier
		}
		return notQualifier
	}
}

// promote returns the named child of parent as a branch of kind, turning a
// leaf or missing child into an empty branch. Callers check kinds first.
func promote(parent *Branch, name string, kind Kind) *Branch {
	if c, ok := parent.Children[name].(*Branch); ok {
		return c
	}
	c := newBranch(kind)
	parent.Children[name] = c
	return c
}

// add records a leaf unless the name is already known.
func (b *Branch) add(name string) {
	if _, ok := b.Children[name]; !ok {
		b.Children[name] = Leaf{}
	}
}

// splitCountry turns "USA--TX" into ("USA", "TX").
func splitCountry(raw string) (country, state string) {
	country, state, _ = strings.Cut(lastSegment(raw), "--")
	return Normalize(country), Normalize(state)
}

// splitTown returns the city and optional venue of a comma separated town
// field such as "Central Park, New York, NY, USA". A trailing country and
// then a trailing state are dropped before the city is read off the end. A
// segment that only matches a name alias is kept unless two segments remain
// after it, so "Empire State Building, New York" keeps New York as the city.
func splitTown(raw string, isCountry, isState func(string) qualifier) (city, venue string) {
	var segs []string
	for _, s := range strings.Split(raw, ",") {
		if n := Normalize(s); n != "" {
			segs = append(segs, n)
		}
	}
	segs = trimQualifier(segs, isCountry)
	segs = trimQualifier(segs, isState)
	switch len(segs) {
	case 0:
		return "", ""
	case 1:
		return segs[0], ""
	default:
		return segs[len(segs)-1], segs[len(segs)-2]
	}
}

func trimQualifier(segs []string, match func(string) qualifier) []string {
	n := len(segs)
	if n < 2 {
		return segs
	}
	switch match(segs[n-1]) {
	case exactQualifier:
		return segs[:n-1]
	case aliasQualifier:
		if n > 2 {
			return segs[:n-1]
		}
	}
	return segs
}
