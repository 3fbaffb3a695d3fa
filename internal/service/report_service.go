package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/pharmatrust/docvault/internal/filestore"
	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/repo"
)

// ReportService generates document-history reports off the request path.
// Requests land in a bounded channel consumed by a single worker goroutine,
// one task at a time; the job row is the polling surface for callers. Running
// the queue through an explicit channel keeps a second server instance from
// silently double-processing what shared process state would have allowed.
type ReportService struct {
	jobs     *repo.ReportJobRepo
	docs     *repo.DocumentRepo
	versions *repo.VersionRepo
	audits   *repo.AuditRepo
	audit    *AuditService
	store    filestore.Store

	queue chan string
	wg    sync.WaitGroup
}

func NewReportService(jobs *repo.ReportJobRepo, docs *repo.DocumentRepo, versions *repo.VersionRepo, audits *repo.AuditRepo, audit *AuditService, store filestore.Store, queueSize int) *ReportService {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &ReportService{
		jobs:     jobs,
		docs:     docs,
		versions: versions,
		audits:   audits,
		audit:    audit,
		store:    store,
		queue:    make(chan string, queueSize),
	}
}

// Start launches the worker. It drains until ctx is cancelled; Wait blocks
// until the in-flight task finishes.
func (s *ReportService) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case jobID := <-s.queue:
				s.process(ctx, jobID)
			}
		}
	}()
}

func (s *ReportService) Wait() {
	s.wg.Wait()
}

func (s *ReportService) Request(ctx context.Context, actor model.Actor, docID string, prov model.Provenance) (*model.ReportJob, error) {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	job := &model.ReportJob{
		ID:          newID(),
		DocumentID:  docID,
		RequestedBy: actor.ID,
		Status:      model.ReportStatusQueued,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	select {
	case s.queue <- job.ID:
	default:
		_ = s.jobs.UpdateStatus(ctx, job.ID, model.ReportStatusFailed, "", "queue full", timeutil.NowUnix())
		return nil, appErr.ErrTooMany
	}
	s.audit.Record(ctx, actor, model.AuditReportRequested, AuditRefs{DocumentID: docID}, job.ID, prov)
	return job, nil
}

func (s *ReportService) Status(ctx context.Context, jobID string) (*model.ReportJob, error) {
	return s.jobs.GetByID(ctx, jobID)
}

func (s *ReportService) process(ctx context.Context, jobID string) {
	logger := logutil.GetLogger(ctx).With(zap.String("report_job_id", jobID))
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		logger.Error("report job lookup failed", zap.Error(err))
		return
	}
	if err := s.jobs.UpdateStatus(ctx, jobID, model.ReportStatusRunning, "", "", timeutil.NowUnix()); err != nil {
		logger.Error("report job mark running failed", zap.Error(err))
		return
	}
	key, err := s.generate(ctx, job)
	if err != nil {
		logger.Error("report generation failed", zap.Error(err))
		_ = s.jobs.UpdateStatus(ctx, jobID, model.ReportStatusFailed, "", err.Error(), timeutil.NowUnix())
		return
	}
	if err := s.jobs.UpdateStatus(ctx, jobID, model.ReportStatusDone, key, "", timeutil.NowUnix()); err != nil {
		logger.Error("report job mark done failed", zap.Error(err))
		return
	}
	logger.Info("report generated", zap.String("file_key", key))
}

func (s *ReportService) generate(ctx context.Context, job *model.ReportJob) (string, error) {
	doc, err := s.docs.GetByID(ctx, job.DocumentID)
	if err != nil {
		return "", err
	}
	versions, err := s.versions.List(ctx, job.DocumentID)
	if err != nil {
		return "", err
	}
	audits, err := s.audits.ListByDocument(ctx, job.DocumentID)
	if err != nil {
		return "", err
	}
	markdown := buildReportMarkdown(doc, versions, audits)
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	html := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" + doc.Title + "</title></head><body>" + buf.String() + "</body></html>"
	key := "reports/" + job.ID + ".html"
	reader := filestore.NewBytesReader([]byte(html))
	if err := s.store.Save(ctx, key, reader, int64(len(html))); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	return key, nil
}

func buildReportMarkdown(doc *model.Document, versions []model.DocumentVersion, audits []model.AuditLogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Document History Report: %s\n\n", doc.Title)
	fmt.Fprintf(&b, "Classification: %s\n\n", doc.Classification)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("## Versions\n\n")
	b.WriteString("| Version | Official | Created By | Created At | Checksum |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, v := range versions {
		official := ""
		if v.IsOfficial {
			official = "yes"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			v.Version, official, v.CreatedBy, time.Unix(v.Ctime, 0).UTC().Format(time.RFC3339), v.Content.Sha256)
	}
	b.WriteString("\n## Audit Trail\n\n")
	for _, e := range audits {
		fmt.Fprintf(&b, "- %s %s by %s", time.Unix(e.Ctime, 0).UTC().Format(time.RFC3339), e.Action, e.ActorName)
		if e.Detail != "" {
			fmt.Fprintf(&b, " (%s)", e.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}
