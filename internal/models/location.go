package models

// RawReport is one self-reported event location as received from the map
// collector. Town is free text such as "Mynttorget, Stockholm"; Country may
// carry a state code after a double dash, e.g. "USA--TX".
type RawReport struct {
	ID      int    `json:"id,omitempty"`
	Town    string `json:"Town"`
	Country string `json:"Country"`
}

// Normalized is the answer of a normalization probe.
type Normalized struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	Country    string `json:"country,omitempty"`
}

// AtlasSummary describes a freshly built atlas.
type AtlasSummary struct {
	Accepted int            `json:"accepted"`
	Skipped  map[string]int `json:"skipped"`
	Depth    int            `json:"depth"`
	Path     []string       `json:"path"`
	Node     any            `json:"node"`
}
