package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/catelog/catetube-backend/internal/logging"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("report not found")
	ErrNotReady = errors.New("report not ready for download")
	ErrBusy     = errors.New("report queue is full")
)

type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

type Status struct {
	ReportID string `json:"report_id"`
	Status   State  `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

type Request struct {
	UserID string
	Kind   Kind
	Format Format
	From   *time.Time
	To     *time.Time
}

type task struct {
	id  string
	req Request
}

type record struct {
	status   Status
	artifact *Artifact
}

// Manager owns the report task queue, a fixed pool of workers draining it,
// and the progress store. Submitting returns a handle immediately; callers
// poll Status and fetch the artifact when completed. All state is held in
// the Manager rather than package globals so it can be injected and faded
// out per instance.
type Manager struct {
	gen   *Generator
	log   logging.Logger
	queue chan task

	mu      sync.Mutex
	records map[string]*record

	workers int
	wg      sync.WaitGroup
}

func NewManager(gen *Generator, log logging.Logger, workers int) *Manager {
	if workers <= 0 {
		workers = 2
	}
	return &Manager{
		gen:     gen,
		log:     log.With("component", "reports"),
		queue:   make(chan task, 64),
		records: make(map[string]*record),
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is canceled; Wait
// blocks until they have drained.
func (m *Manager) Start(ctx context.Context) {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-m.queue:
					m.process(ctx, t)
				}
			}
		}()
	}
}

func (m *Manager) Wait() {
	m.wg.Wait()
}

// Submit enqueues a report request and returns its id without blocking on
// generation.
func (m *Manager) Submit(req Request) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	m.records[id] = &record{status: Status{ReportID: id, Status: StateProcessing, Progress: 0}}
	m.mu.Unlock()

	select {
	case m.queue <- task{id: id, req: req}:
		return id, nil
	default:
		m.mu.Lock()
		delete(m.records, id)
		m.mu.Unlock()
		return "", ErrBusy
	}
}

func (m *Manager) process(ctx context.Context, t task) {
	m.setProgress(t.id, 20)
	artifact, err := m.gen.Generate(ctx, t.req.UserID, t.req.Kind, t.req.Format, t.req.From, t.req.To)

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[t.id]
	if !ok {
		// Cleaned up while generating; drop the result.
		return
	}
	if err != nil {
		m.log.Error(ctx, "report generation failed", "report_id", t.id, "error", err.Error())
		rec.status.Status = StateError
		rec.status.Error = err.Error()
		return
	}
	rec.status.Status = StateCompleted
	rec.status.Progress = 100
	rec.artifact = artifact
}

func (m *Manager) setProgress(id string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok && rec.status.Status == StateProcessing {
		rec.status.Progress = progress
	}
}

func (m *Manager) Status(id string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Status{}, ErrNotFound
	}
	return rec.status, nil
}

// Take returns the completed artifact and evicts it, so a report is
// downloaded at most once per generation.
func (m *Manager) Take(id string) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.status.Status != StateCompleted {
		return nil, ErrNotReady
	}
	delete(m.records, id)
	return rec.artifact, nil
}

func (m *Manager) Cleanup(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
}

func (m *Manager) Active() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.status)
	}
	return out
}
