package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

func TestMergeApprovePromotesOfficialVersion(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{
		DraftID:    draft.ID,
		ApproverID: approver.ID,
		Summary:    "updated cleaning steps",
	}, testProv)
	require.NoError(t, err)
	require.Equal(t, model.MergeStatusPending, request.Status)

	got, err := env.drafts.Get(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, model.DraftStatusPendingApproval, got.Status)

	promoted, err := env.merges.Approve(ctx, approver, request.ID, testProv)
	require.NoError(t, err)
	require.Equal(t, 2, promoted.Version)
	require.True(t, promoted.IsOfficial)
	require.Equal(t, draft.Content, promoted.Content)

	official, err := env.documents.GetOfficialVersion(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, promoted.ID, official.ID)

	versions, err := env.documents.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	got, err = env.drafts.Get(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, model.DraftStatusApproved, got.Status)
}

func TestMergeDoubleApproveKeepsOneVersion(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleLab)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	_, err = env.merges.Approve(ctx, approver, request.ID, testProv)
	require.NoError(t, err)

	_, err = env.merges.Approve(ctx, approver, request.ID, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	versions, err := env.documents.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
}

func TestMergeRejectReturnsDraftForRevision(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	second := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	require.NoError(t, env.merges.Reject(ctx, approver, request.ID, "missing risk assessment", testProv))

	got, err := env.drafts.Get(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, model.DraftStatusInProgress, got.Status)

	// the official timeline is untouched by a rejection
	versions, err := env.documents.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	// a rejected draft can be revised and resubmitted to a different approver
	_, err = env.drafts.Update(ctx, author, draft.ID, service.DraftPatch{
		Content: &model.ContentRef{Path: "uploads/rev2.pdf", Size: 12, Sha256: "cc"},
	}, testProv)
	require.NoError(t, err)

	resubmitted, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: second.ID}, testProv)
	require.NoError(t, err)
	require.Equal(t, second.ID, resubmitted.ApproverID)
}

func TestMergeSubmitGuards(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	other := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	labUser := env.seedUser(t, model.RoleLab)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	// only the draft creator may submit
	_, err := env.merges.Submit(ctx, other, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	// the approver must hold an approving role
	_, err = env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: labUser.ID}, testProv)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	// one pending request per draft
	_, err = env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.ErrorIs(t, err, appErr.ErrConflict)

	// a draft under review refuses edits
	_, err = env.drafts.Update(ctx, author, draft.ID, service.DraftPatch{
		Content: &model.ContentRef{Path: "uploads/late.pdf", Size: 13, Sha256: "dd"},
	}, testProv)
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestMergeApproveRequiresDecidingRole(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	_, err = env.merges.Approve(ctx, author, request.ID, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)
	require.ErrorIs(t, env.merges.Reject(ctx, author, request.ID, "nope", testProv), appErr.ErrForbidden)

	versions, err := env.documents.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
}

// Concurrent approvals against one document must serialize on the document row
// and hand out strictly consecutive version numbers.
func TestMergeConcurrentApprovalsNumberConsecutively(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)

	const n = 5
	requestIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		draft := env.seedDraft(t, author, doc)
		request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
		require.NoError(t, err)
		requestIDs = append(requestIDs, request.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range requestIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = env.merges.Approve(ctx, approver, id, testProv)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	versions, err := env.documents.ListVersions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, n+1)
	seen := map[int]bool{}
	officials := 0
	for _, v := range versions {
		require.False(t, seen[v.Version], "duplicate version %d", v.Version)
		seen[v.Version] = true
		require.LessOrEqual(t, v.Version, n+1)
		if v.IsOfficial {
			officials++
		}
	}
	require.Equal(t, 1, officials)
}

func TestMergeListFiltersByApprover(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	author := env.seedUser(t, model.RoleProduction)
	approver := env.seedUser(t, model.RoleManagement)
	doc := env.seedDocument(t, author)
	draft := env.seedDraft(t, author, doc)

	request, err := env.merges.Submit(ctx, author, service.SubmitInput{DraftID: draft.ID, ApproverID: approver.ID}, testProv)
	require.NoError(t, err)

	list, err := env.merges.List(ctx, repo.MergeRequestFilter{ApproverID: approver.ID, Status: model.MergeStatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, request.ID, list[0].ID)
	require.Equal(t, doc.Title, list[0].DocumentTitle)
}
