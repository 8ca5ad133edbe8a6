package service

import (
	"context"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"github.com/rs/zerolog/log"
)

// ActivityService writes and reads the audit trail.
type ActivityService interface {
	// Record never fails the caller: write errors are logged and dropped.
	Record(ctx context.Context, actor model.Actor, action, entityType, entityID, entityName, details string)
	List(ctx context.Context, filter dto.ActivityFilter) ([]dto.ActivityItem, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, actor model.Actor, action, entityType, entityID, entityName, details string) {
	entry := &model.ActivityLog{
		UserID:     actor.UID,
		UserName:   actorName(actor),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("activity log write failed")
	}
}

func (s *activityService) List(ctx context.Context, filter dto.ActivityFilter) ([]dto.ActivityItem, error) {
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ActivityItem, 0, len(logs))
	for i := range logs {
		items = append(items, activityToItem(&logs[i]))
	}
	return items, nil
}

func activityToItem(a *model.ActivityLog) dto.ActivityItem {
	return dto.ActivityItem{
		ID:         a.ID,
		UserID:     a.UserID,
		UserName:   a.UserName,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		EntityName: a.EntityName,
		Details:    a.Details,
		Timestamp:  fmtTime(a.Timestamp),
	}
}

func actorName(a model.Actor) string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	}
	return a.UID
}
