package atlas

import "strings"

var stopWords = map[string]bool{
	"Municipality": true,
	"Prefecture":   true,
	"District":     true,
}

// Normalize drops postal codes, parenthesized codes and administrative stop
// words from a whitespace separated location name.
func Normalize(raw string) string {
	words := strings.Fields(raw)
	kept := words[:0]
	for _, w := range words {
		if stopWords[w] || strings.ContainsAny(w, "0123456789()") {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// lastSegment returns the text after the final comma.
func lastSegment(raw string) string {
	if i := strings.LastIndex(raw, ","); i >= 0 {
		return raw[i+1:]
	}
	return raw
}
