package activity

import "context"

type ActivityRepository interface {
	Create(ctx context.Context, log Log) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Log, error)
}
