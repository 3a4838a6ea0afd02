// Package events publishes the ordered stream of sync progress
// transitions described in spec §4.7, for UI or CLI observers.
package events

import "github.com/nimbuscommerce/catalogsync/internal/core"

// Mode identifies which kind of sync a SyncProgress/SyncResult belongs to.
type Mode string

const (
	ModeFull        Mode = "FULL"
	ModeIncremental Mode = "INCREMENTAL"
)

// Phase enumerates the sync lifecycle: Idle -> Preparing ->
// Syncing(mode, fraction) -> Completed|Failed -> Idle.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhasePreparing Phase = "PREPARING"
	PhaseSyncing   Phase = "SYNCING"
	PhaseCompleted Phase = "COMPLETED"
	PhaseFailed    Phase = "FAILED"
)

// SyncResult summarizes one completed sync invocation.
type SyncResult struct {
	Mode     Mode
	Counters core.BatchCounters
}

// SyncProgress is one point in the ordered progress stream for a sync.
type SyncProgress struct {
	Phase    Phase
	Mode     Mode
	Fraction float64
	Result   *SyncResult
	Err      error
}

// Equal compares two progress values disregarding the Result's contents
// beyond its Mode, per §4.7: "equality disregards result equality except
// for sync type" — this lets a UI diff on phase/fraction/mode without
// being perturbed by result payload differences that don't affect what
// is displayed.
func (p SyncProgress) Equal(other SyncProgress) bool {
	if p.Phase != other.Phase || p.Mode != other.Mode || p.Fraction != other.Fraction {
		return false
	}
	pMode, oMode := Mode(""), Mode("")
	if p.Result != nil {
		pMode = p.Result.Mode
	}
	if other.Result != nil {
		oMode = other.Result.Mode
	}
	return pMode == oMode
}
