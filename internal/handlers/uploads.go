package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/services"
	"github.com/yungbote/catalog-backend/internal/storage"
)

type UploadsHandler struct {
	uploads *services.UploadService
}

func NewUploadsHandler(uploads *services.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploads}
}

// POST /api/uploads
func (h *UploadsHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_upload_file", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_upload_file", err)
		return
	}
	defer f.Close()

	job, err := h.uploads.Enqueue(c.Request.Context(), fileHeader.Filename, f)
	if errors.Is(err, storage.ErrTooLarge) {
		RespondError(c, http.StatusRequestEntityTooLarge, "upload_too_large", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "upload_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// GET /api/uploads/:id
func (h *UploadsHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.uploads.GetJob(c.Request.Context(), id)
	if err != nil {
		RespondError(c, statusFor(err), "job_not_found", err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}

// GET /api/uploads
func (h *UploadsHandler) ListJobs(c *gin.Context) {
	jobs, err := h.uploads.ListJobs(c.Request.Context(), intQuery(c, "limit", 50))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_jobs_failed", err)
		return
	}
	RespondOK(c, gin.H{"jobs": jobs})
}
