package handler

import (
	"context"

	"geoform/internal/atlas"
	"geoform/internal/form"

	"github.com/stretchr/testify/mock"
)

// MockAtlasService is a mock implementation of the AtlasService interface
type MockAtlasService struct {
	mock.Mock
}

func (m *MockAtlasService) BuildAtlas(ctx context.Context) (*atlas.Atlas, atlas.Stats, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).(*atlas.Atlas)
	return a, args.Get(1).(atlas.Stats), args.Error(2)
}

// MockNormalizeService is a mock implementation of the NormalizeService interface
type MockNormalizeService struct {
	mock.Mock
}

func (m *MockNormalizeService) Normalize(raw string) (string, error) {
	args := m.Called(raw)
	return args.String(0), args.Error(1)
}

func (m *MockNormalizeService) Country(raw string) (string, bool) {
	args := m.Called(raw)
	return args.String(0), args.Bool(1)
}

// MockQuestionService is a mock implementation of the QuestionService interface
type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) Preview(ctx context.Context, continueRef string) (form.Tree, error) {
	args := m.Called(ctx, continueRef)
	return args.Get(0).(form.Tree), args.Error(1)
}
