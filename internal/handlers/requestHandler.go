package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/akolanti/DocAssistant/internal/adapter"
	"github.com/akolanti/DocAssistant/internal/api"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

// RootHandler godoc
// @Summary      Service banner
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.BannerResponse
// @Router       / [get]
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.BannerResponse{
		Message: "Document Q&A API",
		Docs:    "/swagger/index.html",
	})
}

// HealthHandler godoc
// @Summary      Service health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Backend:   h.info.Backend,
		Embedding: h.info.Embedding,
		LLM:       h.info.LLM,
	})
}

// AskHealthHandler godoc
// @Summary      Question service health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /ask/health [get]
func (h *Handler) AskHealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "rag"})
}

// AskHandler godoc
// @Summary      Answer a question from the ingested documents
// @Description  Retrieves the closest chunks, optionally consults the policy tool, and asks the model. Without document_id or source the newest document is searched unless use_latest is false.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest   true  "Question and retrieval options"
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.JobResponse  "Empty question or invalid max_results"
// @Failure      502      {object}  api.JobResponse  "Vector store or model unavailable"
// @Router       /ask [post]
func (h *Handler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	var req api.AskRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithTrace(r.Context()).Warn("Bad ask request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	q, err := adapter.ToQuestion(req)
	if err != nil {
		writeRagError(w, err)
		return
	}
	answer, err := h.rag.AnswerQuestion(r.Context(), q)
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(answer))
}

// AskSimpleHandler godoc
// @Summary      Answer a question with default options
// @Description  Four results, no tools, newest document scope.
// @Tags         Questions
// @Produce      json
// @Param        question  query     string  true  "Question"
// @Success      200       {object}  api.SimpleAskResponse
// @Failure      400       {object}  api.JobResponse
// @Router       /ask/simple [post]
func (h *Handler) AskSimpleHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	answer, err := h.rag.AnswerQuestion(r.Context(), commonModels.Question{
		Text:       r.URL.Query().Get("question"),
		MaxResults: config.DefaultMaxResults,
		Scope:      commonModels.Scope{UseLatest: true},
	})
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SimpleAskResponse{Answer: answer.Answer})
}

// UploadHandler godoc
// @Summary      Upload and ingest a document
// @Description  Receives a file via multipart/form-data, extracts and chunks its text and stores the chunks before responding.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF, DOCX, DOC or TXT file"
// @Success      200   {object}  api.UploadResponse
// @Failure      400   {object}  api.JobResponse  "Unsupported or unreadable file"
// @Failure      500   {object}  api.JobResponse  "Storage or write error"
// @Router       /upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	upload, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	defer func() {
		if err := os.Remove(upload.Path); err != nil {
			h.logger.WithTrace(r.Context()).Warn("Could not remove upload", "path", upload.Path, "error", err)
		}
	}()

	result, err := h.rag.Ingest(r.Context(), upload)
	if err != nil {
		writeRagError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(result))
}
