package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
)

// SaveSnapshot stores a complete snapshot in one transaction and prunes all but
// the most recent snapshots. Claims without an ID are skipped and counted in a
// warning rather than failing the save.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	snap, skipped := dropUnidentifiedClaims(snap)
	if skipped > 0 {
		slog.Warn("Skipped claims without an ID",
			"skipped", skipped,
			"kept", snap.Len())
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (fetched_at, claim_count) VALUES (?, ?)`,
		fetchedAt.UTC(), snap.Len())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	snapshotID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_claims (
			snapshot_id, status, position, claim_id, member_name, policy_name,
			description, provider_name, provider_role, rejection_reason, amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare claim insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, status := range model.Statuses {
		for position, claim := range snap.Partition(status) {
			var amount sql.NullFloat64
			if claim.Amount != nil {
				amount = sql.NullFloat64{Float64: *claim.Amount, Valid: true}
			}
			var createdAt sql.NullTime
			if claim.CreatedAt != nil {
				createdAt = sql.NullTime{Time: claim.CreatedAt.UTC(), Valid: true}
			}

			if _, err := stmt.ExecContext(ctx,
				snapshotID, string(status), position, claim.ID, claim.MemberName, claim.PolicyName,
				claim.Description, claim.ProviderName, string(claim.ProviderRole), claim.RejectionReason,
				amount, createdAt,
			); err != nil {
				return fmt.Errorf("failed to insert claim %s: %w", claim.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?
		)`, s.keepSnapshots); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recently fetched snapshot, with claims in the
// order the backend delivered them.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context) (model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return model.Snapshot{}, err
	}

	var (
		snapshotID int64
		fetchedAt  time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`,
	).Scan(&snapshotID, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, common.ErrNotFound
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, claim_id, member_name, policy_name, description,
			provider_name, provider_role, rejection_reason, amount, created_at
		FROM snapshot_claims
		WHERE snapshot_id = ?
		ORDER BY position`, snapshotID)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to query snapshot claims: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	snap := model.Snapshot{
		FetchedAt: fetchedAt,
		Approved:  []model.Claim{},
		Rejected:  []model.Claim{},
		Pending:   []model.Claim{},
	}
	for rows.Next() {
		var (
			status    string
			role      string
			claim     model.Claim
			amount    sql.NullFloat64
			createdAt sql.NullTime
		)
		if err := rows.Scan(&status, &claim.ID, &claim.MemberName, &claim.PolicyName, &claim.Description,
			&claim.ProviderName, &role, &claim.RejectionReason, &amount, &createdAt); err != nil {
			return model.Snapshot{}, fmt.Errorf("failed to scan claim: %w", err)
		}
		claim.ProviderRole = model.ProviderRole(role)
		if amount.Valid {
			v := amount.Float64
			claim.Amount = &v
		}
		if createdAt.Valid {
			t := createdAt.Time
			claim.CreatedAt = &t
		}

		switch model.Status(status) {
		case model.StatusApproved:
			snap.Approved = append(snap.Approved, claim)
		case model.StatusRejected:
			snap.Rejected = append(snap.Rejected, claim)
		case model.StatusPending:
			snap.Pending = append(snap.Pending, claim)
		default:
			return model.Snapshot{}, fmt.Errorf("%w: unknown status %q", common.ErrDatabaseCorrupted, status)
		}
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to iterate claims: %w", err)
	}

	return snap, nil
}
