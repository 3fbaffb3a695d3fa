package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/config"
	"github.com/pharmatrust/docvault/internal/filestore"
	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/service"
)

func newReportEnv(t *testing.T, env *testEnv, queueSize int) (*service.ReportService, filestore.Store) {
	t.Helper()
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	jobRepo := repo.NewReportJobRepo(env.db)
	docRepo := repo.NewDocumentRepo(env.db)
	versionRepo := repo.NewVersionRepo(env.db)
	auditRepo := repo.NewAuditRepo(env.db)
	return service.NewReportService(jobRepo, docRepo, versionRepo, auditRepo, env.audit, store, queueSize), store
}

func TestReportGeneration(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	author := env.seedUser(t, model.RoleProduction)
	doc := env.seedDocument(t, author)

	reports, store := newReportEnv(t, env, 4)
	reports.Start(ctx)

	job, err := reports.Request(ctx, author, doc.ID, testProv)
	require.NoError(t, err)
	require.Equal(t, model.ReportStatusQueued, job.Status)

	var done *model.ReportJob
	require.Eventually(t, func() bool {
		got, err := reports.Status(ctx, job.ID)
		if err != nil || got.Status != model.ReportStatusDone {
			return false
		}
		done = got
		return true
	}, 10*time.Second, 50*time.Millisecond)

	reader, err := store.Open(ctx, done.FileKey)
	require.NoError(t, err)
	defer reader.Close()
	html, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Contains(t, string(html), doc.Title)

	cancel()
	reports.Wait()
}

func TestReportUnknownDocument(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()

	author := env.seedUser(t, model.RoleLab)
	reports, _ := newReportEnv(t, env, 4)

	_, err := reports.Request(context.Background(), author, "missing-doc", testProv)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
