package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

const defaultActionLimit = 50

// RecordAction appends a confirmed mutation to the action log and sets its ID.
func (s *SQLiteStorage) RecordAction(ctx context.Context, action *model.Action) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAction(action); err != nil {
		return err
	}

	if action.PerformedAt.IsZero() {
		action.PerformedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (claim_id, action_type, reason, performed_at) VALUES (?, ?, ?, ?)`,
		action.ClaimID, string(action.Type), action.Reason, action.PerformedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get action id: %w", err)
	}
	action.ID = id
	return nil
}

// RecentActions returns logged actions, newest first.
func (s *SQLiteStorage) RecentActions(ctx context.Context, filter service.ActionFilter) ([]model.Action, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.ClaimID != "" {
		where = append(where, "claim_id = ?")
		args = append(args, filter.ClaimID)
	}
	if filter.Since != nil {
		where = append(where, "performed_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT id, claim_id, action_type, reason, performed_at FROM actions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY performed_at DESC, id DESC LIMIT ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActionLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	actions := []model.Action{}
	for rows.Next() {
		var (
			action     model.Action
			actionType string
		)
		if err := rows.Scan(&action.ID, &action.ClaimID, &actionType, &action.Reason, &action.PerformedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		action.Type = model.ActionType(actionType)
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}

	return actions, nil
}
