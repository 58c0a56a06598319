package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/snapx-edu/academy-hub/internal/application/coursestate"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// SyncJournal is the append-only record of optimistic mutations and domain
// events. It implements coursestate.Journal and feeds on the event bus via
// RecordEvent. Writes are best effort from the caller's point of view: a
// journal failure is logged upstream and never blocks the mutation.
type SyncJournal struct {
	conn *Connection
}

// NewSyncJournal creates a new SyncJournal.
func NewSyncJournal(conn *Connection) *SyncJournal {
	return &SyncJournal{conn: conn}
}

// RecordMutation appends one optimistic mutation.
func (j *SyncJournal) RecordMutation(ctx context.Context, rec coursestate.MutationRecord) error {
	query := `
		INSERT INTO sync_journal
			(operation, course_id, student_email, progress, completed_modules, remote_id, remote_error, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := j.conn.Exec(ctx, query,
		rec.Operation,
		rec.CourseID,
		rec.StudentEmail,
		rec.Progress,
		rec.CompletedModules,
		rec.RemoteID,
		rec.RemoteError,
		rec.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("journal: record mutation: %w", err)
	}
	return nil
}

// RecordEvent appends one domain event to the event log.
func (j *SyncJournal) RecordEvent(ctx context.Context, event shared.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("journal: encode payload: %w", err)
	}

	query := `
		INSERT INTO event_log (event_type, aggregate_id, occurred_at, payload)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := j.conn.Exec(ctx, query,
		string(event.EventType()),
		event.AggregateID(),
		event.OccurredAt(),
		payload,
	); err != nil {
		return fmt.Errorf("journal: record event: %w", err)
	}
	return nil
}

// JournalEntry is one row of the sync journal.
type JournalEntry struct {
	ID               int64
	Operation        string
	CourseID         string
	StudentEmail     string
	Progress         int
	CompletedModules int
	RemoteID         string
	RemoteError      string
	AppliedAt        time.Time
	RecordedAt       time.Time
}

// RecentMutations returns the newest journal entries for a student.
func (j *SyncJournal) RecentMutations(ctx context.Context, email string, limit int) ([]JournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, operation, course_id, student_email, progress, completed_modules,
		       remote_id, remote_error, applied_at, recorded_at
		FROM sync_journal
		WHERE student_email = $1
		ORDER BY applied_at DESC
		LIMIT $2
	`
	rows, err := j.conn.Query(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query mutations: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(
			&e.ID,
			&e.Operation,
			&e.CourseID,
			&e.StudentEmail,
			&e.Progress,
			&e.CompletedModules,
			&e.RemoteID,
			&e.RemoteError,
			&e.AppliedAt,
			&e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("journal: scan mutation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PendingCount returns how many mutations never reached the record store.
// These rows represent the documented local/remote drift.
func (j *SyncJournal) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := j.conn.QueryRow(ctx,
		`SELECT count(*) FROM sync_journal WHERE remote_error <> ''`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("journal: count pending: %w", err)
	}
	return count, nil
}
