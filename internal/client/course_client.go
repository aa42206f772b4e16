package client

import (
	"context"
	"errors"

	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

// CourseClient confirms courses against the course service.
type CourseClient struct {
	peer *peerClient
}

// NewCourseClient builds a client for cfg.CourseServiceURL.
func NewCourseClient(cfg config.PeersConfig, metrics UpstreamObserver) *CourseClient {
	return &CourseClient{peer: newPeerClient("course", cfg.CourseServiceURL, cfg.Timeout, metrics)}
}

// FetchByCourseID returns the course snapshot or a COURSE_NOT_FOUND,
// INVALID_COURSE_ID or UPSTREAM_UNAVAILABLE error.
func (c *CourseClient) FetchByCourseID(ctx context.Context, courseID string) (*models.CourseSnapshot, error) {
	var course models.CourseSnapshot
	err := c.peer.fetch(ctx, courseID, &course)
	switch {
	case err == nil:
		return &course, nil
	case errors.Is(err, errPeerNotFound):
		return nil, appErrors.CourseNotFound(courseID)
	case errors.Is(err, errPeerRejected):
		return nil, appErrors.InvalidCourseID(courseID)
	default:
		return nil, appErrors.UpstreamUnavailable("course", err)
	}
}
