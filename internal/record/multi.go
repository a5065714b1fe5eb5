package record

import (
	"context"
	"errors"

	"github.com/park285/chess-arena/internal/arena"
)

// Multi fans recorder calls out to several backends. Every backend is
// attempted; errors are joined.
type Multi []arena.Recorder

func (m Multi) RecordMatchStart(ctx context.Context, s arena.MatchStart) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordMatchStart(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordResult(ctx context.Context, r arena.MatchResult) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordResult(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
