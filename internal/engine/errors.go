package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/barcut/internal/model"
)

var (
	// ErrUnfittableItem is matched by every *UnfittableItemError.
	ErrUnfittableItem = errors.New("item does not fit the stock unit")
	// ErrInfeasible means no combination of known patterns meets the demand constraints.
	ErrInfeasible = errors.New("demand cannot be met with the available patterns")
	// ErrSolverTimeout means the run's time budget ran out with no incumbent to fall back on.
	ErrSolverTimeout = errors.New("solver exceeded the time budget")
	// ErrTooManyPatterns means full enumeration exceeded Settings.MaxPatterns.
	ErrTooManyPatterns = errors.New("too many cutting patterns to enumerate")
	// ErrInvalidInput wraps validation failures of the stock, items or settings.
	ErrInvalidInput = errors.New("invalid optimization input")
)

// UnfittableItemError names the item that cannot appear in any pattern.
type UnfittableItemError struct {
	ItemID string
	Label  string
	Length int
	Width  int
	Stock  model.StockUnit
}

func (e *UnfittableItemError) Error() string {
	if e.Width > 0 {
		return fmt.Sprintf("item %q (%dx%d mm) does not fit %s stock in either orientation", e.Label, e.Length, e.Width, e.Stock)
	}
	return fmt.Sprintf("item %q (%d mm) is longer than the %s stock", e.Label, e.Length, e.Stock)
}

func (e *UnfittableItemError) Is(target error) bool {
	return target == ErrUnfittableItem
}
