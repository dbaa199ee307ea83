package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/metrics"
)

// DefaultBaseURL is used when Config.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8080/"

// Client is the wardrobe backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	log        *logger.Logger

	// zero when a custom HTTPClient is supplied
	writeTimeout time.Duration
	readTimeout  time.Duration
}

// Config holds the client configuration
type Config struct {
	BaseURL        string        // backend base URL (e.g. "http://192.168.1.10:8080/")
	ConnectTimeout time.Duration // dial timeout (default: 2m)
	ReadTimeout    time.Duration // limit on waiting for response headers, and again on reading the body (default: 5m)
	WriteTimeout   time.Duration // limit from starting the request until its body is fully sent (default: 5m)
	HTTPClient     *http.Client  // Optional custom HTTP client, timeouts are ignored when set
	Logger         *logger.Logger
	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64
	UserAgent         string
}

// NewClient creates a new wardrobe API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 2 * time.Minute
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "wardroberec-client/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	httpClient := cfg.HTTPClient
	writeTimeout, readTimeout := time.Duration(0), time.Duration(0)
	if httpClient == nil {
		writeTimeout, readTimeout = cfg.WriteTimeout, cfg.ReadTimeout
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   cfg.ConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: cfg.ReadTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		log:        cfg.Logger,

		writeTimeout: writeTimeout,
		readTimeout:  readTimeout,
	}
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read HTTP response
type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

var (
	errWriteTimeout = errors.New("write timeout: request body not sent in time")
	errReadTimeout  = errors.New("read timeout: response body not received in time")
)

// timeoutCause reports which phase timed out when ctx was cancelled by one
// of the per-request timers, and returns err unchanged otherwise
func timeoutCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, errWriteTimeout) || errors.Is(cause, errReadTimeout) {
		return cause
	}
	return err
}

// doJSON performs a request with an optional JSON body and returns the raw response.
// Only transport failures are returned as errors; status handling is left to callers.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body interface{}) (*response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, contentType, reqBody)
}

// do sends a request and reads the whole response body
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.RecordClientRequest(op, metrics.OutcomeTransport, 0)
			return nil, &Error{Kind: KindTransport, Op: op, Err: err}
		}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if c.writeTimeout > 0 {
		writeTimer := time.AfterFunc(c.writeTimeout, func() { cancel(errWriteTimeout) })
		defer writeTimer.Stop()
		ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
			WroteRequest: func(httptrace.WroteRequestInfo) { writeTimer.Stop() },
		})
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.New().String()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = timeoutCause(ctx, err)
		elapsed := time.Since(start)
		metrics.RecordClientRequest(op, metrics.OutcomeTransport, elapsed)
		c.log.With("request_id", requestID).Debugf("%s %s failed after %s: %v", method, url, elapsed, err)
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if c.readTimeout > 0 {
		readTimer := time.AfterFunc(c.readTimeout, func() { cancel(errReadTimeout) })
		defer readTimer.Stop()
	}

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		err = timeoutCause(ctx, err)
		metrics.RecordClientRequest(op, metrics.OutcomeTransport, elapsed)
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.log.WithFields(map[string]interface{}{
		"request_id": requestID,
		"status":     resp.StatusCode,
		"duration":   elapsed.String(),
	}).Debugf("%s %s", method, url)

	out := &response{StatusCode: resp.StatusCode, Body: respBody}
	if out.ok() {
		metrics.RecordClientRequest(op, metrics.OutcomeSuccess, elapsed)
	} else {
		metrics.RecordClientRequest(op, metrics.OutcomeRejected, elapsed)
	}
	return out, nil
}

// expectSuccess converts a non-2xx response into a ServerRejected error
func expectSuccess(op string, resp *response) error {
	if resp.ok() {
		return nil
	}
	return &Error{
		Kind:       KindServerRejected,
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(resp.Body)),
	}
}

// decode parses a successful response body into result
func decode(op string, resp *response, result interface{}) error {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		metrics.RecordDecodeFailure(op)
		return &Error{Kind: KindDecode, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("empty response body")}
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		metrics.RecordDecodeFailure(op)
		return &Error{
			Kind:       KindDecode,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        fmt.Errorf("failed to parse response: %w", err),
		}
	}
	return nil
}

// Clothes returns the clothing item service
func (c *Client) Clothes() *ClothesService {
	return &ClothesService{client: c}
}

// Recommendations returns the outfit recommendation service
func (c *Client) Recommendations() *RecommendationService {
	return &RecommendationService{client: c}
}

// Ratings returns the outfit rating service
func (c *Client) Ratings() *RatingService {
	return &RatingService{client: c}
}
