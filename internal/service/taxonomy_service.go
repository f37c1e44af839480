package service

import (
	"context"
	"fmt"
	"strings"

	"geoform/internal/atlas"
	"geoform/internal/metrics"
	"geoform/internal/models"

	"github.com/rs/zerolog/log"
)

// ReportSource interface for dependency injection
type ReportSource interface {
	ListReports(ctx context.Context) ([]models.RawReport, error)
}

// TaxonomyService folds raw reports into a location atlas
type TaxonomyService struct {
	source ReportSource
	tables *atlas.Tables
}

// NewTaxonomyService creates a new taxonomy service. A nil tables uses the built-in tables.
func NewTaxonomyService(source ReportSource, tables *atlas.Tables) *TaxonomyService {
	if tables == nil {
		tables = atlas.DefaultTables()
	}
	return &TaxonomyService{source: source, tables: tables}
}

// BuildAtlas reads every report from the source and builds a fresh atlas
func (s *TaxonomyService) BuildAtlas(ctx context.Context) (*atlas.Atlas, atlas.Stats, error) {
	reports, err := s.source.ListReports(ctx)
	if err != nil {
		return nil, atlas.Stats{}, fmt.Errorf("service: failed to list reports: %w", err)
	}

	b := atlas.NewBuilder(s.tables)
	stats := b.IngestEach(reports, recordReport)

	a := b.Atlas()
	log.Info().
		Int("reports", len(reports)).
		Int("accepted", stats.Accepted).
		Int("skipped", stats.SkippedTotal()).
		Int("depth", a.Depth()).
		Msg("service: built atlas")
	return a, stats, nil
}

func recordReport(r models.RawReport, err error) {
	if err == nil {
		metrics.ReportsTotal.WithLabelValues("accepted", "").Inc()
		return
	}
	metrics.ReportsTotal.WithLabelValues("skipped", atlas.SkipReason(err)).Inc()
	log.Debug().Err(err).Str("town", r.Town).Str("country", r.Country).Msg("service: skipped report")
}

// Normalize applies location name normalization to a single value
func (s *TaxonomyService) Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("service: value cannot be empty")
	}
	return atlas.Normalize(raw), nil
}

// Country resolves a normalized country name or alias to its canonical name
func (s *TaxonomyService) Country(raw string) (string, bool) {
	name := atlas.Normalize(raw)
	if canonical, ok := s.tables.CountryAlias(name); ok {
		name = canonical
	}
	for _, c := range s.tables.Countries {
		if c == name {
			return c, true
		}
	}
	return "", false
}
