package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/internal/service"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

const (
	enrollmentA = "2f8c0e55-1d6b-4b7a-b0c3-5e9a7d4f1c22"
	studentA    = "6c1f7f0e-3b0a-4d8e-9a52-2f1d5b7c9e01"
	courseA     = "0b5e2d9a-7c44-4f0e-8d1b-93a6c2e4f710"
)

type enrollmentServiceMock struct {
	items   []dto.EnrollmentResponse
	listErr error
	err     error
	calls   int
	lastID  string
	lastReq dto.EnrollmentRequest
}

func (m *enrollmentServiceMock) List(ctx context.Context) iter.Seq2[dto.EnrollmentResponse, error] {
	return func(yield func(dto.EnrollmentResponse, error) bool) {
		for _, item := range m.items {
			if !yield(item, nil) {
				return
			}
		}
		if m.listErr != nil {
			yield(dto.EnrollmentResponse{}, m.listErr)
		}
	}
}

func (m *enrollmentServiceMock) respond(id string) (*dto.EnrollmentResponse, error) {
	m.calls++
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &dto.EnrollmentResponse{EnrollmentID: enrollmentA, StudentID: studentA, CourseID: courseA, Semester: models.SemesterFall, EnrollmentYear: 2024}, nil
}

func (m *enrollmentServiceMock) Get(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	return m.respond(id)
}

func (m *enrollmentServiceMock) Create(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error) {
	m.lastReq = req
	return m.respond("")
}

func (m *enrollmentServiceMock) Update(ctx context.Context, id string, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error) {
	m.lastReq = req
	return m.respond(id)
}

func (m *enrollmentServiceMock) Delete(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	return m.respond(id)
}

type rosterExporterMock struct {
	file *service.ExportFile
	err  error
	got  string
}

func (m *rosterExporterMock) Roster(ctx context.Context, format string) (*service.ExportFile, error) {
	m.got = format
	return m.file, m.err
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestEnrollmentCreateReturns201(t *testing.T) {
	svc := &enrollmentServiceMock{}
	handler := NewEnrollmentHandler(svc, nil)
	c, w := newTestContext(http.MethodPost, "/enrollments", []byte(`{"studentId":"`+studentA+`","courseId":"`+courseA+`","semester":"FALL","enrollmentYear":2024}`))

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.lastReq.Semester)
	assert.Equal(t, models.SemesterFall, *svc.lastReq.Semester)
	assert.Equal(t, 2024, *svc.lastReq.EnrollmentYear)

	var body struct {
		Data dto.EnrollmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, enrollmentA, body.Data.EnrollmentID)
}

func TestEnrollmentCreateMalformedBody(t *testing.T) {
	svc := &enrollmentServiceMock{}
	c, w := newTestContext(http.MethodPost, "/enrollments", []byte(`{"studentId":`))

	NewEnrollmentHandler(svc, nil).Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrBadRequest.Code, decodeError(t, w).Error.Code)
	assert.Zero(t, svc.calls)
}

func TestEnrollmentCreateMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{err: appErrors.ErrMissingSemester, status: http.StatusUnprocessableEntity, code: "MISSING_SEMESTER"},
		{err: appErrors.StudentNotFound(studentA), status: http.StatusNotFound, code: "STUDENT_NOT_FOUND"},
		{err: appErrors.UpstreamUnavailable("course", context.DeadlineExceeded), status: http.StatusServiceUnavailable, code: "UPSTREAM_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, w := newTestContext(http.MethodPost, "/enrollments", []byte(`{}`))
			NewEnrollmentHandler(&enrollmentServiceMock{err: tt.err}, nil).Create(c)
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestEnrollmentPathIDLength(t *testing.T) {
	for _, action := range []string{"get", "update", "delete"} {
		t.Run(action, func(t *testing.T) {
			svc := &enrollmentServiceMock{}
			handler := NewEnrollmentHandler(svc, nil)
			c, w := newTestContext(http.MethodGet, "/enrollments/abc", []byte(`{}`))
			c.Params = gin.Params{{Key: "id", Value: "abc"}}

			switch action {
			case "get":
				handler.Get(c)
			case "update":
				handler.Update(c)
			case "delete":
				handler.Delete(c)
			}

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "INVALID_INPUT", body.Error.Code)
			assert.Equal(t, "Provided enrollment id is invalid: abc", body.Error.Message)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestEnrollmentDeleteReturnsRecord(t *testing.T) {
	svc := &enrollmentServiceMock{}
	c, w := newTestContext(http.MethodDelete, "/enrollments/"+enrollmentA, nil)
	c.Params = gin.Params{{Key: "id", Value: enrollmentA}}

	NewEnrollmentHandler(svc, nil).Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, enrollmentA, svc.lastID)
	assert.Contains(t, w.Body.String(), `"semester":"FALL"`)
}

func TestEnrollmentGetNotFound(t *testing.T) {
	svc := &enrollmentServiceMock{err: appErrors.EnrollmentNotFound(enrollmentA)}
	c, w := newTestContext(http.MethodGet, "/enrollments/"+enrollmentA, nil)
	c.Params = gin.Params{{Key: "id", Value: enrollmentA}}

	NewEnrollmentHandler(svc, nil).Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Enrollment id not found: "+enrollmentA, decodeError(t, w).Error.Message)
}

func TestEnrollmentListStreamsEvents(t *testing.T) {
	svc := &enrollmentServiceMock{items: []dto.EnrollmentResponse{{EnrollmentID: "a"}, {EnrollmentID: "b"}}}
	c, w := newTestContext(http.MethodGet, "/enrollments", nil)

	NewEnrollmentHandler(svc, nil).List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(w.Body.String(), "event:message"))
	assert.Contains(t, w.Body.String(), `"enrollmentId":"b"`)
}

func TestEnrollmentListStreamEndsWithErrorEvent(t *testing.T) {
	svc := &enrollmentServiceMock{items: []dto.EnrollmentResponse{{EnrollmentID: "a"}}, listErr: appErrors.ErrInternal}
	c, w := newTestContext(http.MethodGet, "/enrollments", nil)

	NewEnrollmentHandler(svc, nil).List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event:error")
	assert.Len(t, c.Errors, 1)
}

func TestEnrollmentListStoreFailureBeforeFirstEvent(t *testing.T) {
	svc := &enrollmentServiceMock{listErr: appErrors.ErrInternal}
	c, w := newTestContext(http.MethodGet, "/enrollments", nil)

	NewEnrollmentHandler(svc, nil).List(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
	assert.NotContains(t, w.Body.String(), "event:")
}

func TestEnrollmentPathIDCountsCharacters(t *testing.T) {
	id := strings.Repeat("é", 36)
	svc := &enrollmentServiceMock{}
	c, w := newTestContext(http.MethodGet, "/enrollments/x", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	NewEnrollmentHandler(svc, nil).Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.lastID)
}

func TestEnrollmentListAsJSON(t *testing.T) {
	svc := &enrollmentServiceMock{items: []dto.EnrollmentResponse{{EnrollmentID: "a"}}}
	c, w := newTestContext(http.MethodGet, "/enrollments", nil)
	c.Request.Header.Set("Accept", "application/json")

	NewEnrollmentHandler(svc, nil).List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []dto.EnrollmentResponse `json:"data"`
		Meta map[string]int           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta["count"])
}

func TestEnrollmentListAsJSONFailure(t *testing.T) {
	svc := &enrollmentServiceMock{listErr: appErrors.ErrInternal}
	c, w := newTestContext(http.MethodGet, "/enrollments", nil)
	c.Request.Header.Set("Accept", "application/json")

	NewEnrollmentHandler(svc, nil).List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEnrollmentExport(t *testing.T) {
	exporter := &rosterExporterMock{file: &service.ExportFile{Filename: "enrollments.csv", ContentType: "text/csv", Data: []byte("a,b\n")}}
	c, w := newTestContext(http.MethodGet, "/enrollments/export?format=csv", nil)

	NewEnrollmentHandler(&enrollmentServiceMock{}, exporter).Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.got)
	assert.Equal(t, `attachment; filename="enrollments.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestEnrollmentExportBadFormat(t *testing.T) {
	exporter := &rosterExporterMock{err: appErrors.InvalidInput(`unsupported export format "xml"`)}
	c, w := newTestContext(http.MethodGet, "/enrollments/export?format=xml", nil)

	NewEnrollmentHandler(&enrollmentServiceMock{}, exporter).Export(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "xml", exporter.got)
}
