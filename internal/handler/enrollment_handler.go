package handler

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	"github.com/noah-isme/campus-enrollments/internal/service"
	"github.com/noah-isme/campus-enrollments/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context) iter.Seq2[dto.EnrollmentResponse, error]
	Get(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error)
	Create(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, enrollmentID string, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, format string) (*service.ExportFile, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exports     rosterExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exports rosterExporter) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exports: exports}
}

// List godoc
// @Summary List enrollments
// @Description Streams enrollments as server-sent events unless the client accepts application/json.
// @Tags Enrollments
// @Produce text/event-stream
// @Produce json
// @Success 200 {array} dto.EnrollmentResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	seq := h.enrollments.List(c.Request.Context())
	if !response.WantsJSON(c) {
		response.Stream(c, seq)
		return
	}
	items, err := response.Collect(seq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "enrollment")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Create godoc
// @Summary Enroll student in course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary Update enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "enrollment")
	if !ok {
		return
	}
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Delete godoc
// @Summary Delete enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "enrollment")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Export godoc
// @Summary Export enrollment roster
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 422 {object} response.Envelope
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	file, err := h.exports.Roster(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
