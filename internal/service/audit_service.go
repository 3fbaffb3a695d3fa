package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/policy"
	"github.com/pharmatrust/docvault/internal/repo"
)

// AuditService is the append-only event sink. Record is best-effort: a failed
// audit write is logged and swallowed so a logging outage cannot block the
// business operation that triggered it.
type AuditService struct {
	audits *repo.AuditRepo
}

func NewAuditService(audits *repo.AuditRepo) *AuditService {
	return &AuditService{audits: audits}
}

// AuditRefs carries the optional entity references of an audit entry.
type AuditRefs struct {
	DocumentID     string
	DraftID        string
	MergeRequestID string
}

func (s *AuditService) Record(ctx context.Context, actor model.Actor, action string, refs AuditRefs, detail string, prov model.Provenance) {
	entry := &model.AuditLogEntry{
		ID:             newID(),
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		Action:         action,
		DocumentID:     refs.DocumentID,
		DraftID:        refs.DraftID,
		MergeRequestID: refs.MergeRequestID,
		Detail:         detail,
		IP:             prov.IP,
		UserAgent:      prov.UserAgent,
		Ctime:          timeutil.NowUnix(),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		logutil.GetLogger(ctx).Error("audit write failed",
			zap.String("action", action),
			zap.String("actor_id", actor.ID),
			zap.Error(err))
	}
}

func (s *AuditService) List(ctx context.Context, actor model.Actor, filter repo.AuditFilter) ([]model.AuditLogEntry, error) {
	if !policy.CanAdminister(actor) {
		return nil, appErr.ErrForbidden
	}
	return s.audits.List(ctx, filter)
}
