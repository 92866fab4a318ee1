// Package storage names the persistence primitives shared by every repository.
//
// Cross-request invariants (one voting round per group, one pick per round) are
// never guarded by application locks. Repositories expose conditional writes
// instead and report a failed guard with ErrConditionFailed:
//
//   - CreateRoundIfAbsent: insert only if the round ID is new and the group has no
//     voting round.
//   - CompareAndSetStatus: update a round's status only if the current status is one
//     of the expected values. Moving to watched flags the round's pick in the same
//     write.
//   - LockPick: insert the pick and move the round to selected as one write, only if
//     the round has no pick yet and its status is one of the expected values.
//   - Upsert*: last write wins, keyed by the natural key.
package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
)

var (
	ErrConditionFailed = errors.New("conditional write rejected")
	ErrNotFound        = errors.New("record not found")
)

// StatusChange is the argument of CompareAndSetStatus. The store stamps the
// timestamp column that belongs to To (closed_at, watched_at, rated_at) with At
// and records PickID when it is set. A change to watched also marks the round's
// pick watched at At.
type StatusChange struct {
	RoundID uuid.UUID
	From    []model.RoundStatus
	To      model.RoundStatus
	At      time.Time
	PickID  *uuid.UUID
}
