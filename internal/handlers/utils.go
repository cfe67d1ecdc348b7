package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocAssistant/internal/adapter"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/rag/ingest"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

var logRH = logger_i.NewLogger("ResponseWriter")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, only logging is left
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func writeRagError(w http.ResponseWriter, err error) {
	res := adapter.FromError(err)
	writeJsonResponse(w, res.Error.Code, res)
}

// validateContext rejects requests whose client already went away.
func (h *Handler) validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.logger.WithTrace(r.Context()).Warn("context error", "error", err, "remote", r.RemoteAddr)
		return false
	}
	return true
}

func (h *Handler) targetDirectory() (string, error) {
	dir := h.uploadDir
	if dir == "" {
		dir = config.UploadDirectory
	}
	if !filepath.IsAbs(dir) {
		root, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// saveUpload copies the multipart "file" field into the upload directory. The
// response is already written when ok is false.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request) (upload commonModels.Upload, ok bool) {
	log := h.logger.WithTrace(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return upload, false
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return upload, false
	}
	defer fileReader.Close()

	original := filepath.Base(fileMetadata.Filename)
	if ingest.GetDocType(original) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, original,
			fmt.Sprintf("Unsupported file type. Allowed: %s", strings.Join(ingest.SupportedExtensions(), ", ")))
		return upload, false
	}

	targetDir, err := h.targetDirectory()
	if err != nil {
		log.Error("Couldn't get target directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, original, "Storage error")
		return upload, false
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), original))
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, original, "Storage error")
		return upload, false
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		_ = os.Remove(tempFilePath)
		WriteErrorResponse(w, http.StatusInternalServerError, original, "Write error")
		return upload, false
	}
	log.Debug("Saved upload", "filename", original, "path", tempFilePath)
	return commonModels.Upload{Filename: original, Path: tempFilePath}, true
}
