package web

import (
	"net/http"
)

// handleCatalogItems returns the item catalog currently used for matching.
func (s *Server) handleCatalogItems(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Get()
	writeJSON(w, map[string]any{
		"loaded_at": snap.LoadedAt,
		"items":     snap.Items,
	})
}

// handleCatalogStores returns the store catalog currently used for matching.
func (s *Server) handleCatalogStores(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Get()
	writeJSON(w, map[string]any{
		"loaded_at": snap.LoadedAt,
		"stores":    snap.Stores,
	})
}

// handleCatalogSync triggers an immediate catalog refresh from the upstream
// source. Returns 409 when no upstream is configured.
func (s *Server) handleCatalogSync(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		respondError(w, r, http.StatusConflict, "catalog sync is not configured")
		return
	}

	if err := s.refresher.RefreshOnce(r.Context()); err != nil {
		respondError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	snap := s.cache.Get()
	writeJSON(w, map[string]any{
		"status":    "synced",
		"items":     len(snap.Items),
		"stores":    len(snap.Stores),
		"loaded_at": snap.LoadedAt,
	})
}
