package srs

import (
	"fmt"

	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// Params defines all configurable parameters of the review policy
type Params struct {
	// BaseIntervalDays holds the review interval for each mastery level,
	// indexed by level. It has exactly domain.MaxMasteryLevel+1 entries.
	BaseIntervalDays []int

	// ConfidenceDecay is the weight kept from the previous confidence score.
	// The remainder moves toward 1.0 on a correct answer and 0.0 otherwise.
	ConfidenceDecay float64

	// IncorrectReviewDays is how soon a missed word comes back.
	IncorrectReviewDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	BaseIntervalDays    []int
	ConfidenceDecay     float64
	IncorrectReviewDays int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		// Levels 0 through 5
		BaseIntervalDays:    []int{0, 1, 3, 7, 14, 30},
		ConfidenceDecay:     0.8,
		IncorrectReviewDays: 1,
	}
}

// NewParams creates a new Params instance with custom configuration and
// validates the result.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.BaseIntervalDays) > 0 {
		params.BaseIntervalDays = append([]int(nil), config.BaseIntervalDays...)
	}
	if config.ConfidenceDecay > 0 {
		params.ConfidenceDecay = config.ConfidenceDecay
	}
	if config.IncorrectReviewDays > 0 {
		params.IncorrectReviewDays = config.IncorrectReviewDays
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that the parameters describe a usable policy.
func (p *Params) Validate() error {
	if len(p.BaseIntervalDays) != domain.MaxMasteryLevel+1 {
		return fmt.Errorf("%w: need %d base intervals, got %d",
			ErrInvalidParams, domain.MaxMasteryLevel+1, len(p.BaseIntervalDays))
	}
	for level, days := range p.BaseIntervalDays {
		if days < 0 {
			return fmt.Errorf("%w: negative interval for level %d", ErrInvalidParams, level)
		}
		if level > 0 && days < p.BaseIntervalDays[level-1] {
			return fmt.Errorf("%w: intervals must not shrink as level grows (level %d)",
				ErrInvalidParams, level)
		}
	}
	if p.ConfidenceDecay <= 0 || p.ConfidenceDecay >= 1 {
		return fmt.Errorf("%w: confidence decay must be in (0, 1)", ErrInvalidParams)
	}
	if p.IncorrectReviewDays < 1 {
		return fmt.Errorf("%w: incorrect review delay must be at least one day", ErrInvalidParams)
	}
	return nil
}
