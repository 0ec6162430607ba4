package srs

import (
	"errors"
	"time"

	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord     = errors.New("mastery record cannot be nil")
	ErrInvalidParams = errors.New("invalid review policy parameters")
	ErrInvalidLevel  = errors.New("mastery level out of range")
)

// Service defines the interface for review policy operations
type Service interface {
	// ApplyOutcome computes the record that results from one review outcome
	// at reviewedAt. The input record is left untouched.
	ApplyOutcome(
		record *domain.MasteryRecord,
		correct bool,
		reviewedAt time.Time,
	) (*domain.MasteryRecord, error)

	// IntervalDays returns the base review interval for a mastery level
	IntervalDays(level int) (int, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new review policy service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new review policy service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// ApplyOutcome implements the Service interface
func (s *defaultService) ApplyOutcome(
	record *domain.MasteryRecord,
	correct bool,
	reviewedAt time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}
	if record.MasteryLevel < 0 || record.MasteryLevel > domain.MaxMasteryLevel {
		return nil, ErrInvalidLevel
	}

	return calculateNextRecord(record, correct, reviewedAt, s.params), nil
}

// IntervalDays implements the Service interface
func (s *defaultService) IntervalDays(level int) (int, error) {
	if level < 0 || level > domain.MaxMasteryLevel {
		return 0, ErrInvalidLevel
	}
	return s.params.BaseIntervalDays[level], nil
}
