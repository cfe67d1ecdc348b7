package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akolanti/DocAssistant/internal/adapter"
	"github.com/akolanti/DocAssistant/internal/api"
)

const defaultDebugRows = 5

// StatsHandler godoc
// @Summary      Stored chunk count
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.StatsResponse
// @Failure      502  {object}  api.JobResponse
// @Router       /upload/stats [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.documents.Count(r.Context())
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.StatsResponse{TotalDocuments: n, Backend: h.info.Backend})
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  One entry per source filename, newest first.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.ListDocumentsResponse
// @Failure      502  {object}  api.JobResponse
// @Router       /upload/list-documents [get]
func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.documents.Count(r.Context())
	if err != nil {
		writeRagError(w, err)
		return
	}
	sources, err := h.documents.ListUniqueSources(r.Context())
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToListDocumentsResponse(n, sources))
}

// DebugEmbeddingsHandler godoc
// @Summary      Peek at stored embeddings
// @Tags         Documents
// @Produce      json
// @Param        limit  query     int  false  "Rows to return"  default(5)
// @Success      200    {object}  api.DebugEmbeddingsResponse
// @Router       /upload/debug-embeddings [get]
func (h *Handler) DebugEmbeddingsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultDebugRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "", "limit must be a positive integer")
			return
		}
		limit = n
	}
	rows, err := h.documents.Inspect(r.Context(), limit)
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DebugEmbeddingsResponse{Count: len(rows), Rows: rows})
}

// DeleteChunksHandler godoc
// @Summary      Delete chunks by id
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.DeleteChunksRequest  true  "Chunk ids"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.JobResponse
// @Router       /upload/chunks [delete]
func (h *Handler) DeleteChunksHandler(w http.ResponseWriter, r *http.Request) {
	var req api.DeleteChunksRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Ids) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "ids are required")
		return
	}
	if err := h.documents.Delete(r.Context(), req.Ids); err != nil {
		writeRagError(w, err)
		return
	}
	h.logger.WithTrace(r.Context()).Info("Deleted chunks", "count", len(req.Ids))
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Deleted " + strconv.Itoa(len(req.Ids)) + " chunks"})
}

// ClearAllHandler godoc
// @Summary      Delete every stored chunk
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Router       /upload/clear-all [delete]
func (h *Handler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.ClearAll(r.Context()); err != nil {
		writeRagError(w, err)
		return
	}
	h.logger.WithTrace(r.Context()).Warn("Cleared all documents")
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "All documents cleared"})
}
