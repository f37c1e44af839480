package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"geoform/internal/models"

	"github.com/rs/zerolog/log"
)

// Snapshot reads reports from a map export file of the form
// {"data": [{"Town": "...", "Country": "..."}, ...]}.
type Snapshot struct {
	path string
}

// snapshotRecord holds the only fields read from an exported report.
// Upstream ids and coordinates never reach models.RawReport.
type snapshotRecord struct {
	Town    string `json:"Town"`
	Country string `json:"Country"`
}

// NewSnapshot creates a snapshot source for the file at path
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

// ListReports reads the whole snapshot file
func (s *Snapshot) ListReports(ctx context.Context) ([]models.RawReport, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to open snapshot: %w", err)
	}
	defer f.Close()

	reports, skipped, err := ParseSnapshot(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Warn().Str("path", s.path).Int("skipped", skipped).Int("reports", len(reports)).Msg("Skipped malformed snapshot records")
	}
	return reports, nil
}

// ParseSnapshot decodes a map export. Fields other than Town and Country are
// ignored. A record that cannot be decoded is skipped and counted; only a
// broken document is an error.
func ParseSnapshot(r io.Reader) ([]models.RawReport, int, error) {
	var doc struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to decode snapshot: %w", err)
	}

	reports := make([]models.RawReport, 0, len(doc.Data))
	skipped := 0
	for i, msg := range doc.Data {
		var rec snapshotRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Skipping snapshot record")
			skipped++
			continue
		}
		reports = append(reports, models.RawReport{Town: rec.Town, Country: rec.Country})
	}
	return reports, skipped, nil
}
