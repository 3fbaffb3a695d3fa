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

func TestDraftCreateValidatesBaseVersion(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	docA := env.seedDocument(t, author)
	docB := env.seedDocument(t, author)

	baseB, err := env.documents.GetOfficialVersion(ctx, docB.ID)
	require.NoError(t, err)

	// base version must belong to the target document
	_, err = env.drafts.Create(ctx, author, service.DraftCreateInput{
		DocumentID:    docA.ID,
		BaseVersionID: baseB.ID,
		Name:          "cross wired",
	}, testProv)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	// content defaults to the base snapshot when none is supplied
	baseA, err := env.documents.GetOfficialVersion(ctx, docA.ID)
	require.NoError(t, err)
	draft, err := env.drafts.Create(ctx, author, service.DraftCreateInput{
		DocumentID:    docA.ID,
		BaseVersionID: baseA.ID,
		Name:          "branch",
	}, testProv)
	require.NoError(t, err)
	require.Equal(t, baseA.Content, draft.Content)
	require.Equal(t, model.DraftStatusInProgress, draft.Status)
}

func TestDraftOwnershipExclusive(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleLab)
	intruder := env.seedUser(t, model.RoleLab)
	admin := env.seedUser(t, model.RoleAdmin)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	newName := "renamed"
	_, err := env.drafts.Update(ctx, intruder, draft.ID, service.DraftPatch{Name: &newName}, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)
	require.ErrorIs(t, env.drafts.Delete(ctx, intruder, draft.ID, testProv), appErr.ErrForbidden)

	// admin bypasses creator exclusivity
	updated, err := env.drafts.Update(ctx, admin, draft.ID, service.DraftPatch{Name: &newName}, testProv)
	require.NoError(t, err)
	require.Equal(t, newName, updated.Name)
}

func TestDraftDeleteBlockedWhilePending(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	require.ErrorIs(t, env.drafts.Delete(ctx, author, draft.ID, testProv), appErr.ErrConflict)

	// after rejection the draft is free again
	require.NoError(t, env.merges.Reject(ctx, approver, request.ID, "withdrawn", testProv))
	require.NoError(t, env.drafts.Delete(ctx, author, draft.ID, testProv))

	_, err = env.drafts.Get(ctx, draft.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDraftApprovedIsImmutable(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)
	_, err = env.merges.Approve(ctx, approver, request.ID, testProv)
	require.NoError(t, err)

	newName := "too late"
	_, err = env.drafts.Update(ctx, author, draft.ID, service.DraftPatch{Name: &newName}, testProv)
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestDraftListByDocumentAndStatus(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleLab)
	doc := env.seedDocument(t, author)
	env.seedDraft(t, author, doc)
	env.seedDraft(t, author, doc)

	list, err := env.drafts.List(ctx, repo.DraftFilter{DocumentID: doc.ID, Status: model.DraftStatusInProgress})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = env.drafts.List(ctx, repo.DraftFilter{DocumentID: doc.ID, CreatedBy: author.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
}
