package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/DocAssistant/internal/adapter"
	"github.com/akolanti/DocAssistant/internal/adapter/utils"
	"github.com/akolanti/DocAssistant/internal/api"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/job"
)

// AskAsyncHandler godoc
// @Summary      Queue a question job
// @Description  Accepts a question, queues a background job and returns its id for polling.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "Question and retrieval options"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Failure      503      {object}  api.JobResponse      "Queue full"
// @Router       /ask/async [post]
func (h *Handler) AskAsyncHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	var req api.AskRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		h.logger.WithTrace(r.Context()).Warn("Bad async ask request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	q, err := adapter.ToQuestion(req)
	if err != nil {
		writeRagError(w, err)
		return
	}
	h.enqueue(w, r, job.NewJob(r.Context(), jobModel.JobTypeQuery, jobModel.JobPayload{
		Question:   q.Text,
		MaxResults: q.MaxResults,
		UseTools:   q.UseTools,
		Scope:      q.Scope,
	}))
}

// UploadAsyncHandler godoc
// @Summary      Queue a document ingestion job
// @Description  Saves the file to the upload directory and queues an ingestion job. The file is removed once the job ends.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF, DOCX, DOC or TXT file"
// @Success      202   {object}  api.InitJobResponse
// @Failure      400   {object}  api.JobResponse  "Bad Request - Missing fields or file too large"
// @Failure      500   {object}  api.JobResponse  "Internal Server Error - Storage or Write Error"
// @Failure      503   {object}  api.JobResponse  "Queue full"
// @Router       /upload/async [post]
func (h *Handler) UploadAsyncHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	upload, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	queued := h.enqueue(w, r, job.NewJob(r.Context(), jobModel.JobTypeIngest, jobModel.JobPayload{
		IngestFileName: upload.Filename,
		IngestURL:      upload.Path,
	}))
	if !queued {
		// no worker will pick the file up
		if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.WithTrace(r.Context()).Error("Could not remove rejected upload", "path", upload.Path, "error", err)
		}
	}
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	result, found := h.jobs.Get(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// enqueue writes the response and reports whether the job reached the queue.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, newJob jobModel.Job) bool {
	log := h.logger.WithTrace(r.Context()).With("jobId", newJob.Id)
	if err := h.jobs.Enqueue(r.Context(), newJob); err != nil {
		if errors.Is(err, job.ErrQueueFull) {
			WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.Id, "Job queue is full, try again later")
			return false
		}
		log.Error("Could not queue job", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.Id, "Could not queue job")
		return false
	}
	log.Info("Created new job", "type", newJob.JobType)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.Id))
	return true
}
