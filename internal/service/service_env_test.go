package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/model"
	"github.com/pharmatrust/docvault/internal/pkg/password"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
	"github.com/pharmatrust/docvault/internal/testutil"
)

type testEnv struct {
	db        *sql.DB
	users     *repo.UserRepo
	documents *service.DocumentService
	drafts    *service.DraftService
	merges    *service.MergeService
	reports   *service.ReportService
	audit     *service.AuditService
	userSvc   *service.UserService
	auth      *service.AuthService
}

func newTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	conn, cleanup := testutil.OpenTestDB(t)

	userRepo := repo.NewUserRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	versionRepo := repo.NewVersionRepo(conn)
	draftRepo := repo.NewDraftRepo(conn)
	mergeRepo := repo.NewMergeRequestRepo(conn)
	auditRepo := repo.NewAuditRepo(conn)

	audit := service.NewAuditService(auditRepo)
	auth := service.NewAuthService(userRepo, []byte("test-secret"), time.Hour)
	return &testEnv{
		db:        conn,
		users:     userRepo,
		documents: service.NewDocumentService(conn, docRepo, versionRepo, audit),
		drafts:    service.NewDraftService(draftRepo, docRepo, versionRepo, mergeRepo, audit),
		merges:    service.NewMergeService(conn, mergeRepo, draftRepo, docRepo, versionRepo, userRepo, audit),
		audit:     audit,
		userSvc:   service.NewUserService(userRepo, auth, audit),
		auth:      auth,
	}, cleanup
}

var testProv = model.Provenance{IP: "127.0.0.1", UserAgent: "go-test"}

func (e *testEnv) seedUser(t *testing.T, role model.Role) model.Actor {
	t.Helper()
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	now := time.Now().Unix()
	user := &model.User{
		ID:           fmt.Sprintf("u-%d", time.Now().UnixNano()),
		Name:         string(role) + " user",
		Email:        fmt.Sprintf("%s-%d@test.local", role, time.Now().UnixNano()),
		PasswordHash: hash,
		Role:         role,
		State:        model.UserStateActive,
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return model.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
}

func (e *testEnv) seedDocument(t *testing.T, owner model.Actor) *model.Document {
	t.Helper()
	doc, err := e.documents.Create(context.Background(), owner, service.DocumentCreateInput{
		Title:          fmt.Sprintf("SOP-%d", time.Now().UnixNano()),
		Description:    "cleaning procedure",
		Classification: "sop",
		Content:        model.ContentRef{Path: "uploads/base.pdf", Size: 10, Sha256: "aa"},
	}, testProv)
	require.NoError(t, err)
	return doc
}

func (e *testEnv) seedDraft(t *testing.T, author model.Actor, doc *model.Document) *model.Draft {
	t.Helper()
	base, err := e.documents.GetOfficialVersion(context.Background(), doc.ID)
	require.NoError(t, err)
	draft, err := e.drafts.Create(context.Background(), author, service.DraftCreateInput{
		DocumentID:    doc.ID,
		BaseVersionID: base.ID,
		Name:          "rev draft",
		Content:       model.ContentRef{Path: "uploads/rev.pdf", Size: 11, Sha256: "bb"},
	}, testProv)
	require.NoError(t, err)
	return draft
}
