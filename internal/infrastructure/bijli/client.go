package bijli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the BIJLI endpoint (5MB)
const maxResponseSize = 5 * 1024 * 1024

// ErrTransport indicates the legacy endpoint could not be reached or answered
// with a non-success status. Callers fall back to the stored snapshot.
var ErrTransport = errors.New("bijli: transport failure")

// ErrTimeout indicates the fetch exceeded the request deadline. This is the
// only error class eligible for the bulk import's one-shot retry.
var ErrTimeout = errors.New("bijli: fetch timed out")

// RawRecord is the untyped member payload as returned by the legacy system.
// Field names and value types are inconsistent across calls; nothing outside
// the normalizer boundary may interpret it.
type RawRecord map[string]any

// Config holds the connection settings for the legacy BIJLI endpoint
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("bijli: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("bijli: invalid base URL: %w", err)
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("bijli: timeout must be positive")
	}
	return nil
}

// Client fetches raw member records from the legacy BIJLI provider
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a BIJLI client with a bounded request timeout
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// FetchMember fetches the raw record for one member number.
//
// The endpoint answers either with a JSON array (the first element is the
// member record) or with that same array encoded as a JSON string. An empty,
// non-array, or unparseable body means "no data" and returns (nil, nil);
// only transport-level failures surface as errors.
func (c *Client) FetchMember(ctx context.Context, memberNo string) (RawRecord, error) {
	endpoint := fmt.Sprintf("%s/members?memberNo=%s", c.config.BaseURL, url.QueryEscape(memberNo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-Api-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if isTimeoutError(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	record := decodeMemberPayload(body)
	if record == nil {
		c.logger.Debug("bijli returned no usable data",
			zap.String("member_no", memberNo),
			zap.Int("body_bytes", len(body)))
	}
	return record, nil
}

// decodeMemberPayload extracts the first member record from the payload,
// tolerating both the plain-array and string-encoded-array shapes
func decodeMemberPayload(body []byte) RawRecord {
	var records []RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// the legacy system sometimes double-encodes the array as a string
		var encoded string
		if err := json.Unmarshal(body, &encoded); err != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(encoded), &records); err != nil {
			return nil
		}
	}
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// IsTimeout reports whether the error is a fetch-timeout-class failure
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
