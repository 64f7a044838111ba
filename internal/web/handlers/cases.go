package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/store"
)

// CasesHandler handles case endpoints
type CasesHandler struct {
	store store.Gateway
}

// NewCasesHandler creates a new cases handler
func NewCasesHandler(gw store.Gateway) *CasesHandler {
	return &CasesHandler{store: gw}
}

// --- Case responses ---

type caseSummaryResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Archived   bool     `json:"archived"`
	ListOrder  int      `json:"list_order"`
	PhotoCount int      `json:"photo_count"`
	TagIDs     []string `json:"tag_ids"`
	UpdatedAt  string   `json:"updated_at"`
}

type caseDetailResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Note        string               `json:"note"`
	CoverPage   bool                 `json:"cover_page"`
	Address     string               `json:"address"`
	Area        string               `json:"area"`
	Weekdays    []string             `json:"weekdays"`
	WorkStart   string               `json:"work_start,omitempty"`
	WorkEnd     string               `json:"work_end,omitempty"`
	Archived    bool                 `json:"archived"`
	ListOrder   int                  `json:"list_order"`
	TagIDs      []string             `json:"tag_ids"`
	Photos      []photoResponse      `json:"photos"`
	Attachments []attachmentResponse `json:"attachments"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

type photoResponse struct {
	ID               string            `json:"id"`
	Resource         string            `json:"resource"`
	OrderIndex       int               `json:"order_index"`
	Note             string            `json:"note"`
	InExport         bool              `json:"in_export"`
	FullPage         bool              `json:"full_page"`
	Composite        bool              `json:"composite"`
	SourceResources  []string          `json:"source_resources,omitempty"`
	StrokeCount      int               `json:"stroke_count"`
	StampCount       int               `json:"stamp_count"`
	ShowStampSummary bool              `json:"show_stamp_summary"`
	LegendMeanings   map[string]string `json:"legend_meanings,omitempty"`
	CreatedAt        string            `json:"created_at"`
}

type attachmentResponse struct {
	ID         string `json:"id"`
	Document   string `json:"document"`
	Filename   string `json:"filename"`
	OrderIndex int    `json:"order_index"`
	CreatedAt  string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func photoToResponse(p *casefile.CasePhoto) photoResponse {
	return photoResponse{
		ID:               p.ID,
		Resource:         p.Resource,
		OrderIndex:       p.OrderIndex,
		Note:             p.Note,
		InExport:         p.InExport,
		FullPage:         p.FullPage,
		Composite:        p.Composite,
		SourceResources:  p.SourceResources,
		StrokeCount:      len(p.Drawing.Strokes),
		StampCount:       len(p.Marks.Stamps),
		ShowStampSummary: p.ShowStampSummary,
		LegendMeanings:   p.LegendMeanings,
		CreatedAt:        formatTime(p.CreatedAt),
	}
}

func caseToDetailResponse(c *casefile.Case) caseDetailResponse {
	photos := make([]photoResponse, 0, len(c.Photos))
	for _, p := range c.SortedPhotos() {
		photos = append(photos, photoToResponse(p))
	}
	attachments := make([]attachmentResponse, 0, len(c.Attachments))
	for _, a := range c.SortedAttachments() {
		attachments = append(attachments, attachmentResponse{
			ID:         a.ID,
			Document:   a.Document,
			Filename:   a.Filename,
			OrderIndex: a.OrderIndex,
			CreatedAt:  formatTime(a.CreatedAt),
		})
	}

	resp := caseDetailResponse{
		ID:          c.ID,
		Title:       c.Title,
		Note:        c.Note,
		CoverPage:   c.CoverPage,
		Address:     c.Address,
		Area:        c.Area,
		Weekdays:    c.Weekdays.Codes(),
		Archived:    c.Archived,
		ListOrder:   c.ListOrder,
		TagIDs:      c.TagIDs,
		Photos:      photos,
		Attachments: attachments,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	if c.WorkStart != nil {
		resp.WorkStart = c.WorkStart.String()
	}
	if c.WorkEnd != nil {
		resp.WorkEnd = c.WorkEnd.String()
	}
	return resp
}

// --- Cases CRUD ---

// List returns case summaries. Archived cases are included with ?archived=true,
// ?q= filters by title and address ignoring diacritics.
func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ListFilter{
		IncludeArchived: r.URL.Query().Get("archived") == "true",
		Query:           r.URL.Query().Get("q"),
	}
	summaries, err := h.store.ListCases(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	result := make([]caseSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = caseSummaryResponse{
			ID:         s.ID,
			Title:      s.Title,
			Archived:   s.Archived,
			ListOrder:  s.ListOrder,
			PhotoCount: s.PhotoCount,
			TagIDs:     s.TagIDs,
			UpdatedAt:  formatTime(s.UpdatedAt),
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	c := casefile.NewCase(req.Title)
	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusCreated, caseToDetailResponse(c))
}

func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	respondJSON(w, http.StatusOK, caseToDetailResponse(c))
}

func (h *CasesHandler) Update(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		Title     *string   `json:"title"`
		Note      *string   `json:"note"`
		CoverPage *bool     `json:"cover_page"`
		Address   *string   `json:"address"`
		Area      *string   `json:"area"`
		Weekdays  *[]string `json:"weekdays"`
		WorkStart *string   `json:"work_start"`
		WorkEnd   *string   `json:"work_end"`
		Archived  *bool     `json:"archived"`
		ListOrder *int      `json:"list_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Note != nil {
		c.Note = *req.Note
	}
	if req.CoverPage != nil {
		c.CoverPage = *req.CoverPage
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Area != nil {
		c.Area = *req.Area
	}
	if req.Weekdays != nil {
		ws, err := casefile.ParseWeekdays(*req.Weekdays)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Weekdays = ws
	}
	if req.WorkStart != nil {
		if *req.WorkStart == "" {
			c.WorkStart = nil
		} else {
			t, err := casefile.ParseTimeOfDay(*req.WorkStart)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			c.WorkStart = &t
		}
	}
	if req.WorkEnd != nil {
		if *req.WorkEnd == "" {
			c.WorkEnd = nil
		} else {
			t, err := casefile.ParseTimeOfDay(*req.WorkEnd)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			c.WorkEnd = &t
		}
	}
	if req.Archived != nil {
		c.Archived = *req.Archived
	}
	if req.ListOrder != nil {
		c.ListOrder = *req.ListOrder
	}
	c.Touch()

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, caseToDetailResponse(c))
}

func (h *CasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteCase(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete case")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// --- Tags on a case ---

func (h *CasesHandler) AssignTags(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		TagIDs []string `json:"tag_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := c.SetTags(req.TagIDs); err != nil {
		respondDomainError(w, err)
		return
	}
	c.Touch()

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tag_ids": c.TagIDs})
}

// --- Attachments ---

func (h *CasesHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		Document string `json:"document"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Document == "" {
		respondError(w, http.StatusBadRequest, "document is required")
		return
	}

	a := &casefile.CaseAttachment{
		ID:        uuid.New().String(),
		CaseID:    c.ID,
		Document:  req.Document,
		Filename:  req.Filename,
		CreatedAt: time.Now(),
	}
	c.AppendAttachment(a)

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusCreated, attachmentResponse{
		ID:         a.ID,
		Document:   a.Document,
		Filename:   a.Filename,
		OrderIndex: a.OrderIndex,
		CreatedAt:  formatTime(a.CreatedAt),
	})
}

func (h *CasesHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	aid := chi.URLParam(r, "aid")
	if c.RemoveAttachment(aid) == nil {
		respondError(w, http.StatusNotFound, "attachment not found")
		return
	}

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
