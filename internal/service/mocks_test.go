package service

import (
	"context"

	"geoform/internal/form"
	"geoform/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockReportSource is a mock implementation of the ReportSource interface
type MockReportSource struct {
	mock.Mock
}

// ListReports implements ReportSource.
func (m *MockReportSource) ListReports(ctx context.Context) ([]models.RawReport, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]models.RawReport)
	return reports, args.Error(1)
}

// MockFormClient is a mock implementation of the FormClient interface
type MockFormClient struct {
	mock.Mock
}

// GetForm implements FormClient.
func (m *MockFormClient) GetForm(ctx context.Context, id string) (*form.Definition, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*form.Definition)
	return d, args.Error(1)
}

// UpdateForm implements FormClient.
func (m *MockFormClient) UpdateForm(ctx context.Context, id string, d *form.Definition) (*form.Definition, error) {
	args := m.Called(ctx, id, d)
	stored, _ := args.Get(0).(*form.Definition)
	return stored, args.Error(1)
}
