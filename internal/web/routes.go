package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store"
	"github.com/pavelhrncir/casebook/internal/web/handlers"
)

func (s *Server) setupRoutes(gw store.Gateway, rasters raster.Store) {
	editor := casefile.NewEditor(rasters)

	// Create handlers
	casesHandler := handlers.NewCasesHandler(gw)
	photosHandler := handlers.NewPhotosHandler(gw, editor, rasters)
	tagsHandler := handlers.NewTagsHandler(gw)
	rastersHandler := handlers.NewRastersHandler(rasters)
	exportHandler := handlers.NewExportHandler(gw, rasters, s.jobManager, s.config.Export.Preset)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Cases
		r.Get("/cases", casesHandler.List)
		r.Post("/cases", casesHandler.Create)
		r.Get("/cases/{id}", casesHandler.Get)
		r.Put("/cases/{id}", casesHandler.Update)
		r.Delete("/cases/{id}", casesHandler.Delete)
		r.Put("/cases/{id}/tags", casesHandler.AssignTags)
		r.Post("/cases/{id}/attachments", casesHandler.AddAttachment)
		r.Delete("/cases/{id}/attachments/{aid}", casesHandler.RemoveAttachment)

		// Photos
		r.Post("/cases/{id}/photos", photosHandler.Add)
		r.Put("/cases/{id}/photos/reorder", photosHandler.Reorder)
		r.Put("/cases/{id}/photos/{pid}", photosHandler.Update)
		r.Delete("/cases/{id}/photos/{pid}", photosHandler.Delete)
		r.Post("/cases/{id}/photos/compose", photosHandler.Compose)
		r.Post("/cases/{id}/photos/{pid}/decompose", photosHandler.Decompose)
		r.Post("/cases/{id}/photos/{pid}/rotate", photosHandler.Rotate)
		r.Put("/cases/{id}/photos/{pid}/annotation", photosHandler.SetAnnotation)
		r.Get("/cases/{id}/photos/{pid}/legend", photosHandler.Legend)
		r.Get("/cases/{id}/photos/{pid}/preview", photosHandler.Preview)

		// Export (long-running operations)
		r.Get("/cases/{id}/export/plan", exportHandler.Plan)
		r.Post("/cases/{id}/export", exportHandler.Start)
		r.Get("/export/{jobId}", exportHandler.Status)
		r.Get("/export/{jobId}/events", exportHandler.Events)
		r.Get("/export/{jobId}/download", exportHandler.Download)
		r.Delete("/export/{jobId}", exportHandler.Cancel)

		// Rasters
		r.Get("/rasters/{name}/thumb/{size}", rastersHandler.Thumbnail)

		// Tags
		r.Get("/tags", tagsHandler.List)
		r.Post("/tags", tagsHandler.Save)
		r.Delete("/tags/{id}", tagsHandler.Delete)
	})
}
