package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortrace/ortrace-go/internal/domain/job"
	"github.com/ortrace/ortrace-go/internal/domain/project"
	"github.com/ortrace/ortrace-go/internal/domain/report"
	"github.com/ortrace/ortrace-go/internal/domain/ticket"
	"github.com/ortrace/ortrace-go/internal/storage"
)

type fakeQueue struct {
	jobs      []*job.Job
	completed map[uuid.UUID]string
	failed    map[uuid.UUID]string
}

func newFakeQueue(jobs ...*job.Job) *fakeQueue {
	return &fakeQueue{
		jobs:      jobs,
		completed: make(map[uuid.UUID]string),
		failed:    make(map[uuid.UUID]string),
	}
}

func (q *fakeQueue) Enqueue(job.CreateJobRequest) (uuid.UUID, error) { return uuid.Nil, nil }

func (q *fakeQueue) Dequeue() (*job.Job, error) {
	if len(q.jobs) == 0 {
		return nil, nil
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *fakeQueue) Complete(id uuid.UUID, result string) error {
	q.completed[id] = result
	return nil
}

func (q *fakeQueue) Fail(id uuid.UUID, errMsg string) error {
	q.failed[id] = errMsg
	return nil
}

func (q *fakeQueue) Retry(uuid.UUID) error                   { return nil }
func (q *fakeQueue) GetByID(uuid.UUID) (*job.Job, error)     { return nil, nil }
func (q *fakeQueue) GetByTicketID(uuid.UUID) (*job.Job, error) { return nil, nil }

type fakeTickets struct {
	byID     map[uuid.UUID]*ticket.FeedbackTicket
	analyzed []uuid.UUID
	failed   []uuid.UUID
}

func newFakeTickets(tickets ...*ticket.FeedbackTicket) *fakeTickets {
	f := &fakeTickets{byID: make(map[uuid.UUID]*ticket.FeedbackTicket)}
	for _, t := range tickets {
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTickets) Create(*ticket.FeedbackTicket) error { return nil }

func (f *fakeTickets) FindByID(id uuid.UUID) (*ticket.FeedbackTicket, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, errors.New("ticket not found")
	}
	return t, nil
}

func (f *fakeTickets) FindAll(ticket.ListFilter) ([]ticket.FeedbackTicket, error) { return nil, nil }
func (f *fakeTickets) Update(*ticket.FeedbackTicket) error                        { return nil }
func (f *fakeTickets) MarkProcessing(uuid.UUID) error                             { return nil }

func (f *fakeTickets) MarkAnalyzed(id uuid.UUID) error {
	f.analyzed = append(f.analyzed, id)
	return nil
}

func (f *fakeTickets) MarkFailed(id uuid.UUID) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeTickets) Close(uuid.UUID, ticket.ClosedReason) error { return nil }

func (f *fakeTickets) Overview() (*ticket.OverviewStats, error) {
	return &ticket.OverviewStats{}, nil
}

type fakeProjects struct {
	byID map[uuid.UUID]*project.Project
}

func (f *fakeProjects) Create(*project.Project) error { return nil }

func (f *fakeProjects) FindByID(id uuid.UUID) (*project.Project, error) {
	if f.byID != nil {
		if p, ok := f.byID[id]; ok {
			return p, nil
		}
	}
	return nil, errors.New("project not found")
}

func (f *fakeProjects) FindByOwnerID(uuid.UUID) ([]project.Project, error) { return nil, nil }
func (f *fakeProjects) Update(*project.Project) error                      { return nil }

type fakeReports struct {
	created []*report.Report
	issues  [][]report.Issue
	err     error
}

func (f *fakeReports) CreateWithIssues(r *report.Report, issues []report.Issue) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, r)
	f.issues = append(f.issues, issues)
	return nil
}

func (f *fakeReports) FindByTicketID(uuid.UUID) (*report.Report, error) { return nil, nil }
func (f *fakeReports) FindIssues(uuid.UUID) ([]report.Issue, error)     { return nil, nil }

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Put(_ context.Context, path string, data []byte) (string, error) {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[path] = data
	return path, nil
}

func (f *fakeStore) Get(_ context.Context, path string) ([]byte, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) Delete(context.Context, string) error { return nil }
func (f *fakeStore) Exists(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeStore) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) AnalyzeFile(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestWorker(q job.Queue, tk ticket.Repository, pr project.Repository, rp report.Repository, st storage.Backend, cl AnalysisClient) *Worker {
	return New(q, tk, pr, rp, st, cl, 10*time.Millisecond)
}

func TestProcessNextEmptyQueue(t *testing.T) {
	w := newTestWorker(newFakeQueue(), newFakeTickets(), &fakeProjects{}, &fakeReports{}, &fakeStore{}, &fakeClient{})
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessNextSuccess(t *testing.T) {
	tk := &ticket.FeedbackTicket{ID: uuid.New(), FeedbackType: ticket.TypeBug}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID, VideoStoragePath: "recordings/t/clip.mp4"}

	queue := newFakeQueue(j)
	tickets := newFakeTickets(tk)
	reports := &fakeReports{}
	store := &fakeStore{objects: map[string][]byte{"recordings/t/clip.mp4": []byte("video")}}
	client := &fakeClient{response: `{"outcome": "failed", "issues": [{"title": "Broken button", "severity": "high"}]}`}

	w := newTestWorker(queue, tickets, &fakeProjects{}, reports, store, client)
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Contains(t, queue.completed, j.ID)
	assert.Equal(t, []uuid.UUID{tk.ID}, tickets.analyzed)
	require.Len(t, reports.created, 1)
	assert.Equal(t, tk.ID, reports.created[0].TicketID)
	require.Len(t, reports.issues[0], 1)
	assert.Equal(t, "Broken button", reports.issues[0][0].Title)
}

func TestProcessNextDownloadFailure(t *testing.T) {
	tk := &ticket.FeedbackTicket{ID: uuid.New()}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID, VideoStoragePath: "recordings/missing.mp4"}

	queue := newFakeQueue(j)
	tickets := newFakeTickets(tk)

	w := newTestWorker(queue, tickets, &fakeProjects{}, &fakeReports{}, &fakeStore{}, &fakeClient{})
	processed, err := w.processNext(context.Background())
	assert.True(t, processed)
	require.Error(t, err)

	assert.Contains(t, queue.failed, j.ID)
	assert.Contains(t, queue.failed[j.ID], "download video")
	assert.Equal(t, []uuid.UUID{tk.ID}, tickets.failed)
	assert.Empty(t, queue.completed)
}

func TestProcessNextAnalysisFailure(t *testing.T) {
	tk := &ticket.FeedbackTicket{ID: uuid.New()}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID, VideoStoragePath: "clip.mp4"}

	queue := newFakeQueue(j)
	tickets := newFakeTickets(tk)
	store := &fakeStore{objects: map[string][]byte{"clip.mp4": []byte("video")}}
	client := &fakeClient{err: errors.New("model unavailable")}

	w := newTestWorker(queue, tickets, &fakeProjects{}, &fakeReports{}, store, client)
	processed, err := w.processNext(context.Background())
	assert.True(t, processed)
	require.Error(t, err)

	assert.Contains(t, queue.failed[j.ID], "model unavailable")
	assert.Equal(t, []uuid.UUID{tk.ID}, tickets.failed)
}

func TestProcessNextNonJSONStillCompletes(t *testing.T) {
	tk := &ticket.FeedbackTicket{ID: uuid.New()}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID, VideoStoragePath: "clip.mp4"}

	queue := newFakeQueue(j)
	tickets := newFakeTickets(tk)
	reports := &fakeReports{}
	store := &fakeStore{objects: map[string][]byte{"clip.mp4": []byte("video")}}
	client := &fakeClient{response: "The user seemed fine. No structured data here."}

	w := newTestWorker(queue, tickets, &fakeProjects{}, reports, store, client)
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, client.response, queue.completed[j.ID])
	assert.Equal(t, []uuid.UUID{tk.ID}, tickets.analyzed)
	assert.Empty(t, reports.created)
}

func TestProcessNextJobWithoutTicket(t *testing.T) {
	j := &job.Job{ID: uuid.New(), VideoStoragePath: "clip.mp4"}

	queue := newFakeQueue(j)
	tickets := newFakeTickets()
	reports := &fakeReports{}
	store := &fakeStore{objects: map[string][]byte{"clip.mp4": []byte("video")}}
	client := &fakeClient{response: `{"outcome": "success"}`}

	w := newTestWorker(queue, tickets, &fakeProjects{}, reports, store, client)
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Contains(t, queue.completed, j.ID)
	assert.Empty(t, tickets.analyzed)
	assert.Empty(t, reports.created)
}

func TestPromptForPrefersStoredPrompt(t *testing.T) {
	stored := "use exactly this prompt"
	j := &job.Job{ID: uuid.New(), Prompt: &stored}

	w := newTestWorker(newFakeQueue(), newFakeTickets(), &fakeProjects{}, &fakeReports{}, &fakeStore{}, &fakeClient{})
	assert.Equal(t, stored, w.promptFor(j))
}

func TestPromptForUsesProjectCustomQuestions(t *testing.T) {
	projectID := uuid.New()
	p := &project.Project{
		ID: projectID,
		Settings: []byte(`{"analysis_questions": {"bug": [
			{"id": "custom-1", "text": "Does the error banner mention a request id?", "enabled": true, "is_custom": true},
			{"id": "custom-2", "text": "Did the session expire mid-flow?", "enabled": false, "is_custom": true}
		]}}`),
	}
	tk := &ticket.FeedbackTicket{ID: uuid.New(), ProjectID: &projectID, FeedbackType: ticket.TypeBug}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID}

	projects := &fakeProjects{byID: map[uuid.UUID]*project.Project{projectID: p}}
	w := newTestWorker(newFakeQueue(), newFakeTickets(tk), projects, &fakeReports{}, &fakeStore{}, &fakeClient{})

	prompt := w.promptFor(j)
	assert.Contains(t, prompt, "bug report")
	assert.Contains(t, prompt, "Does the error banner mention a request id?")
	assert.NotContains(t, prompt, "Did the session expire mid-flow?")
	assert.NotContains(t, prompt, "Is the user completely blocked from completing the task?")
}

func TestPromptForBuildsFromTicket(t *testing.T) {
	desc := "trying to check out"
	tk := &ticket.FeedbackTicket{ID: uuid.New(), FeedbackType: ticket.TypeBug, TaskDescription: &desc}
	j := &job.Job{ID: uuid.New(), TicketID: &tk.ID}

	w := newTestWorker(newFakeQueue(), newFakeTickets(tk), &fakeProjects{}, &fakeReports{}, &fakeStore{}, &fakeClient{})
	prompt := w.promptFor(j)
	assert.Contains(t, prompt, "bug report")
	assert.Contains(t, prompt, "trying to check out")
	assert.Contains(t, prompt, "Is the user completely blocked from completing the task?")
}
