package activity

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
)

type ActivityServiceImpl struct {
	activity.Repository
}

func NewActivityService(repo activity.Repository) *ActivityServiceImpl {
	return &ActivityServiceImpl{Repository: repo}
}

// Log implements activity.Logger.
func (s *ActivityServiceImpl) Log(ctx context.Context, actorID *string, action activity.Action, entityType, entityID, description string) {
	err := s.Repository.Create(ctx, activity.Entry{
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		IPAddress:   activity.IPFrom(ctx),
	})
	if err != nil {
		slog.Error("failed to record activity", "action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}

// List implements activity.Logger.
func (s *ActivityServiceImpl) List(ctx context.Context, filter activity.Filter) (activity.ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	entries, total, err := s.Repository.List(ctx, filter)
	if err != nil {
		return activity.ListResponse{}, err
	}

	resp := activity.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Entries:    make([]activity.EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, activity.EntryResponse{
			ID:          e.ID,
			ActorID:     e.ActorID,
			ActorName:   e.ActorName,
			Action:      string(e.Action),
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Description: e.Description,
			IPAddress:   e.IPAddress,
			CreatedAt:   e.CreatedAt,
		})
	}
	return resp, nil
}

var _ activity.Logger = (*ActivityServiceImpl)(nil)
