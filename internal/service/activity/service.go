package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

type ActivityServiceImpl struct {
	activityRepo activity.ActivityRepository
	wg           sync.WaitGroup
	now          func() time.Time
}

func NewActivityService(activityRepo activity.ActivityRepository) activity.Service {
	return &ActivityServiceImpl{
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

func (s *ActivityServiceImpl) Log(ctx context.Context, req activity.LogRequest) {
	companyID, actorID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		slog.Warn("Activity log skipped", "action", req.Action, "error", err)
		return
	}

	entry := activity.Log{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   companyID,
		Action:      req.Action,
		Module:      req.Module,
		TargetID:    req.TargetID,
		ActorID:     actorID,
		Description: req.Description,
		Metadata:    req.Metadata,
		CreatedAt:   s.now(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Detached from the request so a finished response does not cancel the write
		writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := s.activityRepo.Create(writeCtx, entry); err != nil {
			slog.Error("Failed to write activity log",
				"action", entry.Action,
				"module", entry.Module,
				"target_id", entry.TargetID,
				"error", err,
			)
		}
	}()
}

func (s *ActivityServiceImpl) List(ctx context.Context, filter activity.ListFilter) ([]activity.LogResponse, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	logs, err := s.activityRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]activity.LogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, activity.LogResponse{
			ID:          l.ID,
			Action:      l.Action,
			Module:      l.Module,
			TargetID:    l.TargetID,
			ActorID:     l.ActorID,
			Description: l.Description,
			Metadata:    l.Metadata,
			CreatedAt:   l.CreatedAt,
		})
	}
	return result, nil
}

// Close waits for in-flight writes
func (s *ActivityServiceImpl) Close() {
	s.wg.Wait()
}
