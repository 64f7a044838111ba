package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/export"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/render"
	"github.com/pavelhrncir/casebook/internal/store"
)

// ExportHandler handles export planning and rendering endpoints
type ExportHandler struct {
	store         store.Gateway
	rasters       raster.Store
	jobManager    *ExportJobManager
	defaultPreset string
}

// NewExportHandler creates a new export handler
func NewExportHandler(gw store.Gateway, rasters raster.Store, jm *ExportJobManager, defaultPreset string) *ExportHandler {
	return &ExportHandler{
		store:         gw,
		rasters:       rasters,
		jobManager:    jm,
		defaultPreset: defaultPreset,
	}
}

// --- Plan responses ---

type slotResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type planBlockResponse struct {
	PhotoID       string       `json:"photo_id"`
	Resource      string       `json:"resource"`
	ExportNumber  int          `json:"export_number"`
	FullPage      bool         `json:"full_page"`
	Slot          slotResponse `json:"slot"`
	NoteLines     []string     `json:"note_lines,omitempty"`
	NoteTruncated bool         `json:"note_truncated,omitempty"`
	LegendRows    int          `json:"legend_rows,omitempty"`
}

type planPageResponse struct {
	Number     int                 `json:"number"`
	Kind       string              `json:"kind"`
	Blocks     []planBlockResponse `json:"blocks,omitempty"`
	Attachment string              `json:"attachment,omitempty"`
}

type planWarningResponse struct {
	Page     int    `json:"page"`
	Block    int    `json:"block"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type planResponse struct {
	CaseID     string                `json:"case_id"`
	Title      string                `json:"title"`
	Preset     string                `json:"preset"`
	PageCount  int                   `json:"page_count"`
	PhotoCount int                   `json:"photo_count"`
	Pages      []planPageResponse    `json:"pages"`
	Warnings   []planWarningResponse `json:"warnings"`
}

func planToResponse(p *export.Plan, preset string, warnings []export.ValidationWarning) planResponse {
	pages := make([]planPageResponse, len(p.Pages))
	for i, page := range p.Pages {
		pr := planPageResponse{
			Number: page.Number,
			Kind:   string(page.Kind),
		}
		for _, b := range page.Blocks {
			pr.Blocks = append(pr.Blocks, planBlockResponse{
				PhotoID:       b.PhotoID,
				Resource:      b.Resource,
				ExportNumber:  b.ExportNumber,
				FullPage:      b.FullPage,
				Slot:          slotResponse{X: b.Slot.X, Y: b.Slot.Y, W: b.Slot.W, H: b.Slot.H},
				NoteLines:     b.NoteLines,
				NoteTruncated: b.NoteTruncated,
				LegendRows:    len(b.Legend),
			})
		}
		if page.Attachment != nil {
			pr.Attachment = page.Attachment.Filename
		}
		pages[i] = pr
	}

	warns := make([]planWarningResponse, len(warnings))
	for i, warn := range warnings {
		warns[i] = planWarningResponse{
			Page:     warn.PageNumber,
			Block:    warn.BlockIndex,
			Severity: warn.Severity,
			Message:  warn.Message,
		}
	}

	return planResponse{
		CaseID:     p.CaseID,
		Title:      p.Title,
		Preset:     preset,
		PageCount:  len(p.Pages),
		PhotoCount: p.PhotoCount,
		Pages:      pages,
		Warnings:   warns,
	}
}

// layoutForPreset resolves and validates the requested layout preset. An
// empty name falls back to the configured default.
func (h *ExportHandler) layoutForPreset(name string) (export.LayoutConfig, string, error) {
	if name == "" {
		name = h.defaultPreset
	}
	cfg, err := export.PresetLayout(name)
	if err != nil {
		return export.LayoutConfig{}, name, err
	}
	return cfg, name, nil
}

// Plan builds the export plan without rendering anything.
func (h *ExportHandler) Plan(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}

	layout, preset, err := h.layoutForPreset(r.URL.Query().Get("preset"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan := export.BuildPlan(c, layout)
	warnings := export.ValidatePlan(plan)
	respondJSON(w, http.StatusOK, planToResponse(plan, preset, warnings))
}

// Start starts a new export job
func (h *ExportHandler) Start(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}

	var req struct {
		Format string `json:"format"`
		Preset string `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Format == "" {
		req.Format = string(render.FormatPDF)
	}

	format := render.Format(req.Format)
	renderer, err := render.ForFormat(format, h.rasters)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	layout, _, err := h.layoutForPreset(req.Preset)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.New().String()
	job := h.jobManager.CreateJob(jobID, c.ID, c.Title, string(format))

	// Export runs on a snapshot so later edits never shift a running job
	go h.runExportJob(job, c.Clone(), layout, format, renderer)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  jobID,
		"case_id": c.ID,
		"status":  string(JobStatusPending),
	})
}

// Status returns the status of an export job
func (h *ExportHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Events streams job events via SSE
func (h *ExportHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			job := h.jobManager.GetJob(id)
			if job == nil {
				return nil
			}
			return job
		},
		func(job SSEJob) any {
			return job
		},
	)
}

// Download returns the rendered artifact of a completed job.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.GetStatus() != JobStatusCompleted {
		respondError(w, http.StatusConflict, "export not finished")
		return
	}

	data, filename, contentType := job.Artifact()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Cancel cancels an export job
func (h *ExportHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// runExportJob runs the export in the background: plan, pre-flight the
// referenced rasters, render, store the artifact on the job.
func (h *ExportHandler) runExportJob(job *ExportJob, c *casefile.Case, layout export.LayoutConfig, format render.Format, renderer render.Renderer) {
	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel
	defer cancel()

	// Wait for a render slot; the job stays pending and cancelable.
	h.jobManager.acquire()
	defer h.jobManager.release()
	if ctx.Err() != nil {
		h.cancelJob(job)
		return
	}

	job.mu.Lock()
	job.Status = JobStatusRunning
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "started", Message: "Export started"})

	plan := export.BuildPlan(c, layout)
	warnings := export.ValidatePlan(plan)
	warningMessages := make([]string, len(warnings))
	for i, warn := range warnings {
		warningMessages[i] = warn.Message
	}

	job.mu.Lock()
	job.TotalPhotos = plan.PhotoCount
	job.PageCount = len(plan.Pages)
	job.Warnings = warningMessages
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "planned", Data: map[string]int{
		"pages":    len(plan.Pages),
		"photos":   plan.PhotoCount,
		"warnings": len(warnings),
	}})

	// Pre-flight every referenced raster so missing resources surface as
	// progress events before the renderer falls back to placeholders.
	resources := planRasterNames(plan)
	missing := 0
	for i, name := range resources {
		if ctx.Err() != nil {
			h.cancelJob(job)
			return
		}
		if _, _, err := h.rasters.Dimensions(ctx, name); err != nil {
			missing++
			job.SendEvent(JobEvent{Type: "raster_missing", Message: name})
		}
		job.mu.Lock()
		job.ProcessedPhotos = i + 1
		job.Progress = (i + 1) * 50 / len(resources)
		job.mu.Unlock()
		job.SendEvent(JobEvent{Type: "progress", Data: map[string]int{
			"current": i + 1,
			"total":   len(resources),
			"missing": missing,
		}})
	}

	data, err := renderer.Render(ctx, plan)
	if err != nil {
		if ctx.Err() != nil {
			h.cancelJob(job)
			return
		}
		h.failJob(job, fmt.Sprintf("rendering failed: %v", err))
		return
	}
	if ctx.Err() != nil {
		h.cancelJob(job)
		return
	}

	filename := fmt.Sprintf("case-%s%s", c.ID, format.Extension())
	job.setArtifact(data, filename, format.ContentType())

	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusCompleted
	job.CompletedAt = &now
	job.Progress = 100
	job.mu.Unlock()

	job.SendEvent(JobEvent{Type: "completed", Data: map[string]any{
		"filename": filename,
		"bytes":    len(data),
		"pages":    len(plan.Pages),
		"missing":  missing,
	}})
}

// planRasterNames collects every raster the plan references, photos first,
// then attachment documents, without duplicates.
func planRasterNames(p *export.Plan) []string {
	seen := make(map[string]bool)
	var names []string
	for _, page := range p.Pages {
		for _, b := range page.Blocks {
			if b.Resource != "" && !seen[b.Resource] {
				seen[b.Resource] = true
				names = append(names, b.Resource)
			}
		}
		if page.Attachment != nil && page.Attachment.Document != "" && !seen[page.Attachment.Document] {
			seen[page.Attachment.Document] = true
			names = append(names, page.Attachment.Document)
		}
	}
	return names
}

func (h *ExportHandler) cancelJob(job *ExportJob) {
	job.mu.Lock()
	job.Status = JobStatusCancelled
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "cancelled", Message: "Job was cancelled"})
}

func (h *ExportHandler) failJob(job *ExportJob, message string) {
	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusFailed
	job.Error = message
	job.CompletedAt = &now
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "job_error", Message: message})
}
