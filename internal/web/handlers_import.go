package web

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/retailops/allocator/internal/importer"
)

// readUploadedForm pulls the uploaded file bytes and the optional role
// mapping out of a multipart form. The mapping form value is a JSON object
// of role name to header name.
func (s *Server) readUploadedForm(w http.ResponseWriter, r *http.Request) (string, []byte, map[string]string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, http.StatusBadRequest, "file exceeds maximum size or invalid form")
		return "", nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "no file provided")
		return "", nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("reading upload: %v", err))
		return "", nil, nil, false
	}

	mappings, ok := parseMappings(w, r)
	if !ok {
		return "", nil, nil, false
	}
	return header.Filename, data, mappings, true
}

func parseMappings(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	raw := r.FormValue("mapping")
	if raw == "" {
		return nil, true
	}
	var mappings map[string]string
	if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid mapping format")
		return nil, false
	}
	return mappings, true
}

// handleStartImport accepts one allocation export and starts an import.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	fileName, data, mappings, ok := s.readUploadedForm(w, r)
	if !ok {
		return
	}

	importID, err := s.service.StartImport(r.Context(), fileName, data, mappings)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, map[string]string{"import_id": importID})
}

// handleStartBatchImport accepts several files under the "files" field and
// runs them as a single import.
func (s *Server) handleStartBatchImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, http.StatusBadRequest, "file exceeds maximum size or invalid form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		respondError(w, r, http.StatusBadRequest, "no file provided")
		return
	}

	var files []importer.SourceFile
	for _, header := range r.MultipartForm.File["files"] {
		data, err := readFormFile(header)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, fmt.Sprintf("reading %s: %v", header.Filename, err))
			return
		}
		files = append(files, importer.SourceFile{Name: header.Filename, Data: data})
	}

	mappings, ok := parseMappings(w, r)
	if !ok {
		return
	}

	batchName := r.FormValue("name")
	if batchName == "" {
		batchName = fmt.Sprintf("batch of %d files", len(files))
	}

	importID, err := s.service.StartBatchImport(r.Context(), batchName, files, mappings)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, map[string]string{"import_id": importID})
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handlePreview runs a dry-run analysis and returns detection results plus
// a sample of the entries a real import would produce.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	fileName, data, mappings, ok := s.readUploadedForm(w, r)
	if !ok {
		return
	}

	preview, err := s.service.AnalyzeFile(r.Context(), fileName, data, mappings)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, preview)
}

// handleImportProgress streams import progress via Server-Sent Events.
// Supports resumption via lastEventId query parameter for reconnection.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	// The event ID is the progress percentage, letting clients skip
	// already-received events after reconnection.
	lastEventIDStr := r.URL.Query().Get("lastEventId")
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	progressCh, err := s.service.SubscribeProgress(importID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed - import finished one way or another
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			percent := progress.Percent()
			if lastEventIDStr != "" && percent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", percent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleImportResult blocks until the import completes, then returns the
// final result.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	result, err := s.service.GetResult(importID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, result)
}

// handleCancelImport cancels an in-progress import.
func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	if err := s.service.CancelImport(importID); err != nil {
		respondError(w, r, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "cancelling"})
}

// handleRollbackImport deletes the allocations of a finished import.
func (s *Server) handleRollbackImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	result, err := s.service.Rollback(r.Context(), importID)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, result)
}

// handleImportHistory returns recent imports, newest first.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	imports, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"imports": imports})
}

// handleImportRecord returns the persisted record for one import.
func (s *Server) handleImportRecord(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	record, err := s.service.GetImportRecord(r.Context(), importID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "import not found")
		return
	}
	writeJSON(w, record)
}

// handleAllocations returns the persisted entries for one import.
func (s *Server) handleAllocations(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	allocs, err := s.service.Allocations(r.Context(), importID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]any{"allocations": allocs})
}

// handleExportAllocations streams the entries of one import as CSV.
func (s *Server) handleExportAllocations(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	allocs, err := s.service.Allocations(r.Context(), importID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="allocations-%s.csv"`, importID))

	cw := csv.NewWriter(w)
	cw.Write([]string{"store_code", "store_name", "item_number", "sku", "description", "quantity", "rank"})
	for _, a := range allocs {
		cw.Write([]string{
			a.StoreCode,
			a.StoreName,
			a.ItemNumber,
			a.SKU,
			a.Description,
			strconv.Itoa(int(a.Quantity)),
			a.Rank,
		})
	}
	cw.Flush()
}

// handleAuditLog returns recent audit entries.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.service.AuditLog(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"entries": entries})
}
