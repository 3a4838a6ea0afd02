package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// GetSyncStatus reads the singleton sync status row, per §4.2's
// get_sync_status contract.
func (s *Store) GetSyncStatus(ctx context.Context, tx *Tx) (core.SyncStatus, error) {
	row := s.conn(tx).QueryRowContext(ctx, `
		SELECT last_full_sync_at, last_incremental_sync_at, in_flight, last_cursor,
		       attempt_count, last_error, progress_current, progress_total
		FROM sync_status WHERE id = 1`)

	var st core.SyncStatus
	var lastFull, lastIncremental, lastCursor, lastError sql.NullString
	if err := row.Scan(&lastFull, &lastIncremental, &st.InFlight, &lastCursor,
		&st.AttemptCount, &lastError, &st.ProgressCurrent, &st.ProgressTotal); err != nil {
		return core.SyncStatus{}, fmt.Errorf("get sync status: %w", err)
	}
	st.LastFullSyncAt = nullString(lastFull)
	st.LastIncrementalSyncAt = nullString(lastIncremental)
	st.LastCursor = nullString(lastCursor)
	st.LastError = nullString(lastError)
	return st, nil
}

// PutSyncStatus overwrites the singleton row, per §4.2's put_sync_status.
func (s *Store) PutSyncStatus(ctx context.Context, tx *Tx, st core.SyncStatus) error {
	_, err := s.conn(tx).ExecContext(ctx, `
		UPDATE sync_status SET
			last_full_sync_at=?, last_incremental_sync_at=?, in_flight=?, last_cursor=?,
			attempt_count=?, last_error=?, progress_current=?, progress_total=?
		WHERE id = 1`,
		st.LastFullSyncAt, st.LastIncrementalSyncAt, st.InFlight, st.LastCursor,
		st.AttemptCount, st.LastError, st.ProgressCurrent, st.ProgressTotal)
	if err != nil {
		return fmt.Errorf("put sync status: %w", err)
	}
	return nil
}
