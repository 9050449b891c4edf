package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/nevbird/storefront-api/pkg/config"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/logger"
)

const maxErrorBody = 4 << 10

var errEndpointRequired = errors.New("payment endpoint is required")

// LineItem is the wire shape the payment-session service accepts. Every
// UnitAmountCents must be a positive integer or the service rejects the
// whole request.
type LineItem struct {
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitAmountCents int    `json:"unit_amount_cents"`
}

type sessionRequest struct {
	Items []LineItem `json:"items"`
}

type sessionResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Client talks to the external payment-session service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries uint64
	logg       *logger.Logger
}

// NewClient builds a payment-session client from config. Returns an error
// when no endpoint is configured; callers treat that as mock mode.
func NewClient(cfg config.PaymentsConfig, logg *logger.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errEndpointRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		logg:       logg,
	}, nil
}

// ValidateLines checks every line against the service contract before any
// network call, aggregating all violations.
func ValidateLines(items []LineItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no items provided")
	}
	var err error
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("item %d: name is required", i))
		}
		if item.Quantity < 1 {
			err = multierr.Append(err, fmt.Errorf("item %d: quantity must be at least 1", i))
		}
		if item.UnitAmountCents <= 0 {
			err = multierr.Append(err, fmt.Errorf("item %d: unit amount must be a positive integer", i))
		}
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment line items")
	}
	return nil
}

// CreateSession submits the line items and returns the redirect URL.
// 5xx responses are retried with capped exponential backoff; 4xx responses
// surface immediately as validation failures.
func (c *Client) CreateSession(ctx context.Context, items []LineItem) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "payment client not configured")
	}
	if err := ValidateLines(items); err != nil {
		return "", err
	}

	body, err := json.Marshal(sessionRequest{Items: items})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment request")
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(200*time.Millisecond))

	var url string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptURL, attemptErr := c.createSessionOnce(ctx, body)
		if attemptErr != nil {
			return attemptErr
		}
		url = attemptURL
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return "", typed
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment session")
	}
	return url, nil
}

func (c *Client) createSessionOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("payment session call: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("read payment response: %w", err))
	}

	var parsed sessionResponse
	if len(payload) > 0 {
		// tolerate non-JSON error bodies; the status code still decides
		_ = json.Unmarshal(payload, &parsed)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if strings.TrimSpace(parsed.URL) == "" {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "payment session response missing url")
		}
		return parsed.URL, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("payment session rejected (%d)", resp.StatusCode)
		}
		return "", pkgerrors.New(pkgerrors.CodeValidation, msg)
	default:
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("payment session failed (%d)", resp.StatusCode)
		}
		return "", retry.RetryableError(errors.New(msg))
	}
}
