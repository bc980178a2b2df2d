package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// RunLogRepository provides data access methods for the recurring_run_log
// table: the append-only idempotency journal of the due-rule processor.
//
// The UNIQUE(rule_id, scheduled_at) constraint on the table is the system's
// sole concurrency-control primitive for occurrence posting. Insert surfaces
// a constraint violation as apperrors.ErrOccurrenceAlreadyLogged so the
// processor can treat it as an expected "claimed elsewhere" signal.
type RunLogRepository struct {
	db *sql.DB
}

// NewRunLogRepository creates a new RunLogRepository with the provided database connection.
func NewRunLogRepository(db *sql.DB) *RunLogRepository {
	return &RunLogRepository{db: db}
}

// Insert claims an occurrence by writing its run log entry.
// Returns apperrors.ErrOccurrenceAlreadyLogged if an entry for the same
// (rule, scheduledAt) pair already exists.
func (r *RunLogRepository) Insert(ctx context.Context, entry *model.RunLogEntry) error {
	query := `
		INSERT INTO recurring_run_log (id, rule_id, user_id, scheduled_at, transaction_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	txIDs, err := marshalTransactionIDs(entry.TransactionIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.RuleID,
		entry.UserID,
		FormatTime(entry.ScheduledAt),
		txIDs,
		FormatTime(entry.CreatedAt),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrOccurrenceAlreadyLogged
	}
	if err != nil {
		return fmt.Errorf("failed to insert run log entry: %w", err)
	}
	return nil
}

// AttachTransactions records the ledger transaction ids generated for a
// successfully posted occurrence. This is the entry's only mutation.
func (r *RunLogRepository) AttachTransactions(ctx context.Context, entryID string, transactionIDs []string) error {
	txIDs, err := marshalTransactionIDs(transactionIDs)
	if err != nil {
		return err
	}

	query := `UPDATE recurring_run_log SET transaction_ids = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, txIDs, entryID)
	if err != nil {
		return fmt.Errorf("failed to attach transactions to run log entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run log update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRunLogEntryNotFound
	}
	return nil
}

// Delete removes a run log entry. This is the compensating action when
// posting fails after the occurrence was claimed: deleting the entry restores
// the occurrence to unclaimed so the next pass retries it.
func (r *RunLogRepository) Delete(ctx context.Context, entryID string) error {
	query := `DELETE FROM recurring_run_log WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, entryID); err != nil {
		return fmt.Errorf("failed to delete run log entry: %w", err)
	}
	return nil
}

// ListByRule retrieves all run log entries for a rule in occurrence order.
// Retained history for soft-deleted rules remains queryable for audit.
func (r *RunLogRepository) ListByRule(ctx context.Context, ruleID string) ([]model.RunLogEntry, error) {
	query := `
		SELECT id, rule_id, user_id, scheduled_at, transaction_ids, created_at
		FROM recurring_run_log
		WHERE rule_id = ?
		ORDER BY scheduled_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring_run_log table: %w", err)
	}
	defer rows.Close()

	entries := []model.RunLogEntry{}
	for rows.Next() {
		var entry model.RunLogEntry
		var scheduledAtStr, createdAtStr string
		var txIDs sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.RuleID,
			&entry.UserID,
			&scheduledAtStr,
			&txIDs,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring_run_log table results: %w", err)
		}

		entry.ScheduledAt, err = ParseTime(scheduledAtStr)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		if txIDs.Valid && txIDs.String != "" {
			if err := json.Unmarshal([]byte(txIDs.String), &entry.TransactionIDs); err != nil {
				return nil, fmt.Errorf("failed to parse transaction ids: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring_run_log table: %w", err)
	}

	return entries, nil
}

// marshalTransactionIDs encodes the generated transaction ids as a JSON array.
// An empty claim is stored as NULL.
func marshalTransactionIDs(ids []string) (sql.NullString, error) {
	if len(ids) == 0 {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode transaction ids: %w", err)
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}
