package client

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
	"github.com/noah-isme/campus-enrollments/pkg/middleware/requestid"
)

const (
	studentID = "6c1f7f0e-3b0a-4d8e-9a52-2f1d5b7c9e01"
	courseID  = "0b5e2d9a-7c44-4f0e-8d1b-93a6c2e4f710"
)

type upstreamCall struct {
	service string
	outcome string
}

type recordingUpstream struct {
	mu    sync.Mutex
	calls []upstreamCall
}

func (r *recordingUpstream) ObserveUpstream(service, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, upstreamCall{service: service, outcome: outcome})
}

func peerServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestStudentClientDecodesEnvelope(t *testing.T) {
	var gotPath, gotRequestID string
	server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get(requestid.HeaderKey)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"studentId":"` + studentID + `","firstName":"Ada","lastName":"Lovelace","program":"CS"}}`))
	})

	observer := &recordingUpstream{}
	client := NewStudentClient(config.PeersConfig{StudentServiceURL: server.URL + "/api/v1/students", Timeout: time.Second}, observer)

	ctx := requestid.WithValue(context.Background(), "req-1")
	student, err := client.FetchByStudentID(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", student.FullName())
	assert.Equal(t, "/api/v1/students/"+studentID, gotPath)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, []upstreamCall{{service: "student", outcome: "ok"}}, observer.calls)
}

func TestCourseClientDecodesBareObject(t *testing.T) {
	server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"courseId":"` + courseID + `","courseNumber":"CS-101","courseName":"Intro","numHours":3,"numCredits":1.5}`))
	})

	client := NewCourseClient(config.PeersConfig{CourseServiceURL: server.URL, Timeout: time.Second}, nil)
	course, err := client.FetchByCourseID(context.Background(), courseID)
	require.NoError(t, err)
	assert.Equal(t, models.CourseSnapshot{CourseID: courseID, CourseNumber: "CS-101", CourseName: "Intro", NumHours: 3, NumCredits: 1.5}, *course)
}

func TestPeerStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		student *appErrors.Error
		course  *appErrors.Error
		outcome string
	}{
		{name: "not found", status: http.StatusNotFound, student: appErrors.ErrStudentNotFound, course: appErrors.ErrCourseNotFound, outcome: "not_found"},
		{name: "rejected id", status: http.StatusUnprocessableEntity, student: appErrors.ErrInvalidStudentID, course: appErrors.ErrInvalidCourseID, outcome: "rejected"},
		{name: "server error", status: http.StatusInternalServerError, student: appErrors.ErrUpstreamUnavailable, course: appErrors.ErrUpstreamUnavailable, outcome: "error"},
		{name: "bad gateway", status: http.StatusBadGateway, student: appErrors.ErrUpstreamUnavailable, course: appErrors.ErrUpstreamUnavailable, outcome: "error"},
		{name: "undecodable body", status: http.StatusOK, body: "<html>", student: appErrors.ErrUpstreamUnavailable, course: appErrors.ErrUpstreamUnavailable, outcome: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			observer := &recordingUpstream{}
			cfg := config.PeersConfig{StudentServiceURL: server.URL, CourseServiceURL: server.URL, Timeout: time.Second}

			_, err := NewStudentClient(cfg, observer).FetchByStudentID(context.Background(), studentID)
			assert.ErrorIs(t, err, tt.student)

			_, err = NewCourseClient(cfg, observer).FetchByCourseID(context.Background(), courseID)
			assert.ErrorIs(t, err, tt.course)

			require.Len(t, observer.calls, 2)
			assert.Equal(t, tt.outcome, observer.calls[0].outcome)
			assert.Equal(t, "course", observer.calls[1].service)
		})
	}
}

func TestNotFoundMessageNamesIdentifier(t *testing.T) {
	server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := NewCourseClient(config.PeersConfig{CourseServiceURL: server.URL}, nil).FetchByCourseID(context.Background(), courseID)

	var appErr *appErrors.Error
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, "Course id not found: "+courseID, appErr.Message)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestPeerTimeoutIsUpstreamUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client := NewStudentClient(config.PeersConfig{StudentServiceURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := client.FetchByStudentID(context.Background(), studentID)
	assert.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPeerRefusedConnection(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewCourseClient(config.PeersConfig{CourseServiceURL: url, Timeout: time.Second}, nil).FetchByCourseID(context.Background(), courseID)
	assert.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
}

func TestCancelledCallerAbortsLookup(t *testing.T) {
	server := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStudentClient(config.PeersConfig{StudentServiceURL: server.URL}, nil).FetchByStudentID(ctx, studentID)
	assert.ErrorIs(t, err, context.Canceled)
}
