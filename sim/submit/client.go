package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eduwrench/simclient/sim"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// maxErrorBody caps the body text kept in a ServiceError.
const maxErrorBody = 512

// Client sends simulation requests to the execution service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL. A zero timeout leaves
// the deadline to the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send POSTs req to path and decodes the response.
//
// Connection failures, deadlines and unreadable bodies are *sim.TransportError;
// a non-2xx status is *sim.ServiceError. A body with the wrong shape is not an
// error: the degraded response is returned and a warning is logged.
func (c *Client) Send(ctx context.Context, path string, req *sim.SimulationRequest, requestID string) (*sim.SimulationResponse, error) {
	data, err := c.Post(ctx, path, req, requestID)
	if err != nil {
		return nil, err
	}
	out, err := sim.DecodeResponse(data)
	if err != nil {
		logrus.Warnf("request %s: %v", requestID, err)
	}
	return out, nil
}

// Post sends body as JSON to path and returns the raw response body of a 2xx
// reply. Errors are classified as in Send.
func (c *Client) Post(ctx context.Context, path string, body any, requestID string) ([]byte, error) {
	op := "POST " + path
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, &sim.TransportError{Op: "encoding request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &sim.TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &sim.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &sim.TransportError{Op: "reading response", Err: err}
	}
	logrus.Debugf("%s (request %s): HTTP %d, %d bytes in %v", op, requestID, resp.StatusCode, len(data), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &sim.ServiceError{StatusCode: resp.StatusCode, Body: errorBody(data)}
	}
	return data, nil
}

func errorBody(data []byte) string {
	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// String identifies the client in logs.
func (c *Client) String() string {
	return fmt.Sprintf("simulation service at %s", c.baseURL)
}
