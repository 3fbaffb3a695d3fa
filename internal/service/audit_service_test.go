package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

func TestAuditTrailRecordsWorkflow(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID, Summary: "rev"}, testProv)
	require.NoError(t, err)
	_, err = env.merges.Approve(ctx, approver, request.ID, testProv)
	require.NoError(t, err)

	entries, err := env.audit.List(ctx, admin, repo.AuditFilter{DocumentID: doc.ID})
	require.NoError(t, err)

	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	require.Contains(t, actions, model.AuditDocumentCreated)
	require.Contains(t, actions, model.AuditDraftCreated)
	require.Contains(t, actions, model.AuditMergeRequestCreated)
	require.Contains(t, actions, model.AuditMergeRequestApproved)

	for _, e := range entries {
		require.NotEmpty(t, e.ActorID)
		require.Equal(t, testProv.IP, e.IP)
	}

	// reading the trail is reserved for admins
	_, err = env.audit.List(ctx, author, repo.AuditFilter{DocumentID: doc.ID})
	require.ErrorIs(t, err, appErr.ErrForbidden)
}
