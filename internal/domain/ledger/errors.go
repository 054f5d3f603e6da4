// internal/domain/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Shared error taxonomy for the stock engine. Every domain service wraps
// these sentinels so HTTP handlers (and tests) can classify failures with
// errors.Is regardless of the message text.
var (
	// ErrInvalidMovement marks a malformed ledger entry. Internal callers
	// triggering it is a bug, not a business rejection.
	ErrInvalidMovement = errors.New("invalid stock movement")

	// ErrInsufficientStock is the business-rule rejection for any
	// balance/batch shortfall.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidStateTransition marks a workflow status change outside the
	// allowed transitions.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrFormulaInactive rejects production against a deactivated formula.
	ErrFormulaInactive = errors.New("formula is not active")

	// ErrInvalidReason rejects a disposal reason outside the closed set.
	ErrInvalidReason = errors.New("invalid disposal reason")

	// ErrNotFound marks an unknown material/product/batch/formula id.
	ErrNotFound = errors.New("record not found")

	// ErrBusy marks a lock-contention abort. The operation applied nothing
	// and the caller may retry it unchanged.
	ErrBusy = errors.New("resource busy, retry later")
)

// InsufficientMaterialsError rejects a production request, naming every
// short material so the caller can act on all of them at once.
type InsufficientMaterialsError struct {
	Shortages []MaterialShortage
}

// MaterialShortage describes one short formula line
type MaterialShortage struct {
	MaterialID   uint   `json:"material_id"`
	MaterialName string `json:"material_name"`
	Needed       string `json:"needed"`
	Available    string `json:"available"`
	Shortage     string `json:"shortage"`
}

func (e *InsufficientMaterialsError) Error() string {
	names := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		names = append(names, fmt.Sprintf("%s (need %s, have %s)", s.MaterialName, s.Needed, s.Available))
	}
	return "insufficient materials for production: " + strings.Join(names, ", ")
}

// Unwrap lets errors.Is(err, ErrInsufficientStock) match the whole family
func (e *InsufficientMaterialsError) Unwrap() error { return ErrInsufficientStock }

// Postgres error codes surfaced when a transaction loses a lock race.
// 55P03 is lock_not_available (lock_timeout exceeded), 40P01 a deadlock
// abort. Both mean nothing was applied and the caller may retry.
const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeDeadlockDetected = "40P01"
)

// ClassifyLockError converts lock-contention aborts into ErrBusy and
// passes every other error through unchanged.
func ClassifyLockError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgCodeLockNotAvailable || pgErr.Code == pgCodeDeadlockDetected {
			return fmt.Errorf("%w: %s", ErrBusy, pgErr.Message)
		}
	}
	return err
}
