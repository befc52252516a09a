package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/lexio-api/internal/domain"
)

// Common errors
var (
	ErrNilProgress  = errors.New("word progress cannot be nil")
	ErrInvalidLevel = errors.New("prior memory level outside valid range")
)

// Service defines the interface for review scheduling operations
type Service interface {
	// Schedule computes the new memory level and next review date for a raw
	// prior level. A nil priorLevel means no progress exists yet and is
	// treated as level 0 before the transition is applied.
	Schedule(priorLevel *int, wasCorrect bool, now time.Time) (int, time.Time, error)

	// CalculateNextReview computes new progress for an answered word. A
	// record with ReviewCount zero is treated as having no prior level.
	CalculateNextReview(
		progress *domain.WordProgress,
		wasCorrect bool,
		now time.Time,
	) (*domain.WordProgress, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Schedule implements the Service interface for raw level transitions
func (s *defaultService) Schedule(
	priorLevel *int,
	wasCorrect bool,
	now time.Time,
) (int, time.Time, error) {
	if priorLevel != nil &&
		(*priorLevel < domain.MinMemoryLevel || *priorLevel > domain.MaxMemoryLevel) {
		return 0, time.Time{}, ErrInvalidLevel
	}

	newLevel := calculateNewLevel(priorLevel, wasCorrect, s.params)
	nextReviewAt := calculateNextReviewDate(newLevel, now, s.params)

	return newLevel, nextReviewAt, nil
}

// CalculateNextReview implements the Service interface for calculating updated progress
func (s *defaultService) CalculateNextReview(
	progress *domain.WordProgress,
	wasCorrect bool,
	now time.Time,
) (*domain.WordProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}

	if progress.MemoryLevel < domain.MinMemoryLevel ||
		progress.MemoryLevel > domain.MaxMemoryLevel {
		return nil, ErrInvalidLevel
	}

	return calculateNextProgress(progress, wasCorrect, now, s.params), nil
}
