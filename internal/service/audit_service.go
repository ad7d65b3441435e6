package service

import (
	"context"
	"encoding/json"
	"time"

	"invoicer/internal/apperr"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"go.uber.org/zap"
)

type actorKey struct{}

// WithActor attaches the authenticated subject to ctx for audit entries
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, or the system actor
func ActorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return model.ActorSystem
}

type AuditLogResponse struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, entityID string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs lists entries newest first, optionally for one entity
func (s *auditService) GetAuditLogs(ctx context.Context, entityID string, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, entityID, page, limit)
	if err != nil {
		return nil, 0, apperr.FromRepo(err, "audit logs")
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			Actor:      l.Actor,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}

// auditor writes entries inside the caller's transaction. A failed write
// fails the surrounding unit of work.
type auditor struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func (a auditor) record(ctx context.Context, action, entityID, entityName string, details any) error {
	if a.repo == nil {
		return nil
	}
	payload := "{}"
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return apperr.WithError(err).WithHint("failed to record audit entry").Mark(apperr.ErrSystem)
		}
		payload = string(b)
	}

	entry := &model.AuditLog{
		Actor:      ActorFrom(ctx),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		a.log.Error("failed to write audit entry", zap.String("action", action), zap.String("entity_id", entityID), zap.Error(err))
		return apperr.FromRepo(err, "audit log")
	}
	return nil
}
