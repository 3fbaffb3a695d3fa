package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/service"
)

func TestDocumentCreateSeedsOfficialVersionOne(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	owner := env.seedUser(t, model.RoleProduction)
	doc := env.seedDocument(t, owner)

	official, err := env.documents.GetOfficialVersion(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, official.Version)
	require.True(t, official.IsOfficial)
	require.Equal(t, owner.ID, official.CreatedBy)

	detail, err := env.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, detail.OfficialVersion)
	require.Equal(t, model.DocumentStatusActive, detail.Status)

	// backfilling version 1 on a seeded document is a conflict, not a fork
	_, err = env.documents.CreateInitialVersion(ctx, owner, doc.ID, model.ContentRef{Path: "uploads/dup.pdf", Size: 1, Sha256: "ee"})
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestDocumentCreateRequiresContent(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	owner := env.seedUser(t, model.RoleLab)
	_, err := env.documents.Create(context.Background(), owner, service.DocumentCreateInput{Title: "no body"}, testProv)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestDocumentMetaUpdateOwnerOrAdmin(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	owner := env.seedUser(t, model.RoleProduction)
	other := env.seedUser(t, model.RoleManagement)
	admin := env.seedUser(t, model.RoleAdmin)
	doc := env.seedDocument(t, owner)

	title := "SOP rev B"
	err := env.documents.UpdateMeta(ctx, other, doc.ID, service.DocumentPatch{Title: &title}, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	require.NoError(t, env.documents.UpdateMeta(ctx, admin, doc.ID, service.DocumentPatch{Title: &title}, testProv))

	detail, err := env.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, title, detail.Title)
}

func TestDocumentArchiveAdminOnly(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	owner := env.seedUser(t, model.RoleProduction)
	admin := env.seedUser(t, model.RoleAdmin)
	doc := env.seedDocument(t, owner)

	require.ErrorIs(t, env.documents.Archive(ctx, owner, doc.ID, testProv), appErr.ErrForbidden)
	require.NoError(t, env.documents.Archive(ctx, admin, doc.ID, testProv))

	detail, err := env.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, model.DocumentStatusArchived, detail.Status)
}
