package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/campus-enrollments/pkg/middleware/requestid"
)

const maxPeerBody = 1 << 20

var (
	errPeerNotFound = errors.New("peer: not found")
	errPeerRejected = errors.New("peer: identifier rejected")
)

// UpstreamObserver records the latency and outcome of peer calls.
type UpstreamObserver interface {
	ObserveUpstream(service, outcome string, duration time.Duration)
}

type noopUpstreamObserver struct{}

func (noopUpstreamObserver) ObserveUpstream(string, string, time.Duration) {}

// peerClient performs single-shot GET lookups against one peer service.
type peerClient struct {
	service string
	baseURL string
	timeout time.Duration
	http    *http.Client
	metrics UpstreamObserver
}

func newPeerClient(service, baseURL string, timeout time.Duration, metrics UpstreamObserver) *peerClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if metrics == nil {
		metrics = noopUpstreamObserver{}
	}
	return &peerClient{
		service: service,
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{},
		metrics: metrics,
	}
}

// fetch issues GET {baseURL}/{id} and decodes a 200 body into dest. A 404
// yields errPeerNotFound and a 422 yields errPeerRejected; every other
// outcome is returned as a transport error.
func (p *peerClient) fetch(ctx context.Context, id string, dest interface{}) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		p.metrics.ObserveUpstream(p.service, outcome, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", p.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s service: %w", p.service, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		outcome = "not_found"
		return errPeerNotFound
	case http.StatusUnprocessableEntity:
		outcome = "rejected"
		return errPeerRejected
	default:
		return fmt.Errorf("%s service responded %d", p.service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPeerBody))
	if err != nil {
		return fmt.Errorf("read %s response: %w", p.service, err)
	}
	if err := decodePeerBody(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", p.service, err)
	}
	outcome = "ok"
	return nil
}

// decodePeerBody accepts either the {"data": {...}} envelope or a bare object.
func decodePeerBody(body []byte, dest interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		return json.Unmarshal(envelope.Data, dest)
	}
	return json.Unmarshal(body, dest)
}
