package handlers

import (
	"context"
	"sync"
	"time"
)

// eventChannelBuffer sizes each listener channel; slow listeners drop
// events instead of blocking the job.
const eventChannelBuffer = 100

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ExportJob represents an async export job.
type ExportJob struct {
	EventBroadcaster

	ID              string     `json:"id"`
	CaseID          string     `json:"case_id"`
	CaseTitle       string     `json:"case_title"`
	Format          string     `json:"format"`
	Status          JobStatus  `json:"status"`
	Progress        int        `json:"progress"`
	TotalPhotos     int        `json:"total_photos"`
	ProcessedPhotos int        `json:"processed_photos"`
	PageCount       int        `json:"page_count"`
	Warnings        []string   `json:"warnings,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	artifact    []byte
	filename    string
	contentType string
}

// GetStatus returns the current job status (implements SSEJob).
func (j *ExportJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Cancel cancels the export job.
func (j *ExportJob) Cancel() {
	j.EventBroadcaster.Cancel()
	j.mu.Lock()
	j.Status = JobStatusCancelled
	j.mu.Unlock()
}

// Artifact returns the rendered bytes with their filename and content type.
// Empty until the job completes.
func (j *ExportJob) Artifact() (data []byte, filename, contentType string) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.artifact, j.filename, j.contentType
}

// setArtifact stores the rendered result.
func (j *ExportJob) setArtifact(data []byte, filename, contentType string) {
	j.mu.Lock()
	j.artifact = data
	j.filename = filename
	j.contentType = contentType
	j.mu.Unlock()
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, eventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	if b.cancel != nil {
		b.cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Job cancelled by user"})
}

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// ExportJobManager manages async export jobs. At most workers jobs render
// at the same time; the rest wait in pending state.
type ExportJobManager struct {
	jobs map[string]*ExportJob
	mu   sync.RWMutex
	sem  chan struct{}
}

// NewExportJobManager creates a new job manager.
func NewExportJobManager(workers int) *ExportJobManager {
	if workers < 1 {
		workers = 1
	}
	return &ExportJobManager{
		jobs: make(map[string]*ExportJob),
		sem:  make(chan struct{}, workers),
	}
}

// acquire blocks until a render slot is free.
func (m *ExportJobManager) acquire() {
	m.sem <- struct{}{}
}

// release frees a render slot.
func (m *ExportJobManager) release() {
	<-m.sem
}

// CreateJob creates a new export job.
func (m *ExportJobManager) CreateJob(id, caseID, caseTitle, format string) *ExportJob {
	job := &ExportJob{
		ID:        id,
		CaseID:    caseID,
		CaseTitle: caseTitle,
		Format:    format,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *ExportJobManager) GetJob(id string) *ExportJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *ExportJobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *ExportJobManager) ListJobs() []*ExportJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*ExportJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}
