package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
)

type activityRepository struct {
	store *Store
}

func NewActivityRepository(store *Store) activity.ActivityRepository {
	return &activityRepository{store: store}
}

func (r *activityRepository) Create(ctx context.Context, log activity.Log) error {
	return r.store.do(ctx, func(st *state) error {
		st.activity = append(st.activity, log)
		return nil
	})
}

func (r *activityRepository) List(ctx context.Context, companyID string, filter activity.ListFilter) ([]activity.Log, error) {
	var result []activity.Log
	err := r.store.do(ctx, func(st *state) error {
		for _, l := range st.activity {
			if l.CompanyID != companyID {
				continue
			}
			if filter.Module != "" && l.Module != filter.Module {
				continue
			}
			if filter.TargetID != "" && l.TargetID != filter.TargetID {
				continue
			}
			result = append(result, l)
		}
		return nil
	})
	slices.SortStableFunc(result, func(a, b activity.Log) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, err
}
