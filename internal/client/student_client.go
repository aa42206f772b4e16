package client

import (
	"context"
	"errors"

	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

// StudentClient confirms students against the student service.
type StudentClient struct {
	peer *peerClient
}

// NewStudentClient builds a client for cfg.StudentServiceURL.
func NewStudentClient(cfg config.PeersConfig, metrics UpstreamObserver) *StudentClient {
	return &StudentClient{peer: newPeerClient("student", cfg.StudentServiceURL, cfg.Timeout, metrics)}
}

// FetchByStudentID returns the student snapshot or a STUDENT_NOT_FOUND,
// INVALID_STUDENT_ID or UPSTREAM_UNAVAILABLE error.
func (c *StudentClient) FetchByStudentID(ctx context.Context, studentID string) (*models.StudentSnapshot, error) {
	var student models.StudentSnapshot
	err := c.peer.fetch(ctx, studentID, &student)
	switch {
	case err == nil:
		return &student, nil
	case errors.Is(err, errPeerNotFound):
		return nil, appErrors.StudentNotFound(studentID)
	case errors.Is(err, errPeerRejected):
		return nil, appErrors.InvalidStudentID(studentID)
	default:
		return nil, appErrors.UpstreamUnavailable("student", err)
	}
}
