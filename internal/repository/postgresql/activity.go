package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type activityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) activity.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, log activity.Log) error {
	q := GetQuerier(ctx, r.db)

	var metadata []byte
	if log.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(log.Metadata); err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (id, company_id, action, module, target_id, actor_id, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		log.ID, log.CompanyID, log.Action, log.Module, log.TargetID, log.ActorID, log.Description, metadata, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, companyID string, filter activity.ListFilter) ([]activity.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, action, module, target_id, actor_id, description, metadata, created_at
		FROM activity_logs
		WHERE company_id = $1
		  AND ($2 = '' OR module = $2)
		  AND ($3 = '' OR target_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := q.Query(ctx, query, companyID, filter.Module, filter.TargetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []activity.Log
	for rows.Next() {
		var (
			l        activity.Log
			metadata []byte
		)
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Action, &l.Module, &l.TargetID, &l.ActorID, &l.Description, &metadata, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
			}
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
