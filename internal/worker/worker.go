package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ortrace/ortrace-go/internal/analysis"
	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/domain/project"
	"github.com/ortrace/ortrace-go/internal/domain/report"
	"github.com/ortrace/ortrace-go/internal/domain/ticket"
	"github.com/ortrace/ortrace-go/internal/storage"
)

// AnalysisClient is the slice of the model client the worker needs.
type AnalysisClient interface {
	AnalyzeFile(ctx context.Context, path, prompt string) (string, error)
}

// Worker polls the job queue and runs the analysis pipeline: download the
// video, send it to the model, store the result, update the ticket and
// create the report. One job failing never stops the loop.
type Worker struct {
	queue    job.Queue
	tickets  ticket.Repository
	projects project.Repository
	reports  report.Repository
	store    storage.Backend
	client   AnalysisClient

	pollInterval    time.Duration
	analysisTimeout time.Duration
}

func New(queue job.Queue, tickets ticket.Repository, projects project.Repository, reports report.Repository, store storage.Backend, client AnalysisClient, pollInterval time.Duration) *Worker {
	return &Worker{
		queue:           queue,
		tickets:         tickets,
		projects:        projects,
		reports:         reports,
		store:           store,
		client:          client,
		pollInterval:    pollInterval,
		analysisTimeout: 10 * time.Minute,
	}
}

// Start runs the poll loop until ctx is cancelled. An empty queue and a
// failed job both wait one poll interval before the next attempt.
func (w *Worker) Start(ctx context.Context) {
	log.Printf("worker started, polling every %s", w.pollInterval)
	for {
		processed, err := w.processNext(ctx)
		if err != nil {
			log.Printf("worker: %v", err)
		}
		if processed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			log.Println("worker stopped")
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// processNext claims and runs one job. It reports whether a job was
// claimed; errors after the claim mark the job failed rather than
// propagating a retryable state.
func (w *Worker) processNext(ctx context.Context) (bool, error) {
	j, err := w.queue.Dequeue()
	if err != nil {
		return false, fmt.Errorf("dequeue: %w", err)
	}
	if j == nil {
		return false, nil
	}

	log.Printf("worker: processing job %s (%s)", j.ID, j.VideoStoragePath)
	if err := w.runJob(ctx, j); err != nil {
		w.failJob(j, err)
		return true, fmt.Errorf("job %s: %w", j.ID, err)
	}
	return true, nil
}

func (w *Worker) runJob(ctx context.Context, j *job.Job) error {
	data, err := w.store.Get(ctx, j.VideoStoragePath)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}

	tmp, err := os.CreateTemp("", "analysis-*"+filepath.Ext(j.VideoStoragePath))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	prompt := w.promptFor(j)

	analysisCtx, cancel := context.WithTimeout(ctx, w.analysisTimeout)
	defer cancel()

	raw, err := w.client.AnalyzeFile(analysisCtx, tmpPath, prompt)
	if err != nil {
		return fmt.Errorf("analyze video: %w", err)
	}

	if err := w.queue.Complete(j.ID, raw); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	if j.TicketID != nil {
		if err := w.tickets.MarkAnalyzed(*j.TicketID); err != nil {
			log.Printf("worker: mark ticket %s analyzed: %v", *j.TicketID, err)
		}
		w.createReport(*j.TicketID, raw)
	}

	log.Printf("worker: job %s completed", j.ID)
	return nil
}

// promptFor prefers the prompt stored on the job, then builds one from the
// ticket and its project questions, then falls back to the generic prompt.
func (w *Worker) promptFor(j *job.Job) string {
	if j.Prompt != nil && *j.Prompt != "" {
		return *j.Prompt
	}
	if j.TicketID == nil {
		return defaultPrompt()
	}

	t, err := w.tickets.FindByID(*j.TicketID)
	if err != nil {
		log.Printf("worker: load ticket %s: %v", *j.TicketID, err)
		return defaultPrompt()
	}

	questions := project.DefaultAnalysisQuestions().EnabledForType(t.FeedbackType)
	if t.ProjectID != nil {
		if p, err := w.projects.FindByID(*t.ProjectID); err == nil {
			questions = p.AnalysisQuestions().EnabledForType(t.FeedbackType)
		} else {
			log.Printf("worker: load project %s: %v", *t.ProjectID, err)
		}
	}
	return buildPromptForTicket(t, questions)
}

// createReport is best-effort: the job already completed, so a report
// failure is logged and the raw analysis stays available on the job.
func (w *Worker) createReport(ticketID uuid.UUID, raw string) {
	parsed, err := analysis.ExtractJSON(raw)
	if err != nil {
		log.Printf("worker: no structured report for ticket %s: %v", ticketID, err)
		return
	}

	r, issues := analysis.BuildReport(ticketID, parsed, raw)
	if err := w.reports.CreateWithIssues(r, issues); err != nil {
		log.Printf("worker: create report for ticket %s: %v", ticketID, err)
	}
}

func (w *Worker) failJob(j *job.Job, cause error) {
	if err := w.queue.Fail(j.ID, cause.Error()); err != nil {
		log.Printf("worker: mark job %s failed: %v", j.ID, err)
	}
	if j.TicketID != nil {
		if err := w.tickets.MarkFailed(*j.TicketID); err != nil {
			log.Printf("worker: mark ticket %s failed: %v", *j.TicketID, err)
		}
	}
}
