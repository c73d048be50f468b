// Package backend talks to the question-answering service.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/csheth/citeview/internal/workspace"
)

const (
	missingURLMessage = "Backend URL not found. Please check the environment configuration."
	unknownMessage    = "Unknown error occurred"
	maxErrorBody      = 512
)

// Kind tags the outcome of a query.
type Kind int

const (
	KindSuccess Kind = iota
	KindHTTPError
	KindTransportError
	KindConfigError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindTransportError:
		return "transport_error"
	case KindConfigError:
		return "config_error"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of Ask. Only the fields matching Kind are set.
type Result struct {
	Kind       Kind
	Answer     workspace.Answer
	Status     int
	StatusText string
	Detail     string
	Err        error
}

// OK reports whether the request produced an answer.
func (r Result) OK() bool { return r.Kind == KindSuccess }

// Message is the text shown to the user for a failed result.
func (r Result) Message() string {
	switch r.Kind {
	case KindSuccess:
		return ""
	case KindConfigError:
		return missingURLMessage
	case KindHTTPError:
		return "API Error: " + r.StatusText
	default:
		if r.Err != nil && strings.TrimSpace(r.Err.Error()) != "" {
			return r.Err.Error()
		}
		return unknownMessage
	}
}

// Config describes how to reach the backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues GET <base>/?query=... requests.
type Client struct {
	base     string
	client   *http.Client
	validate *validator.Validate
}

// New returns a client. An empty BaseURL is accepted; every Ask then reports
// a configuration error without touching the network.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:   client,
		validate: validator.New(),
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.base }

// QueryURL builds the request address for query.
func QueryURL(base, query string) string {
	return strings.TrimRight(base, "/") + "/?" + url.Values{"query": {query}}.Encode()
}

type wireCitation struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   int    `json:"page"`
}

type wireAnswer struct {
	Response *string        `json:"response" validate:"required"`
	Sources  []wireCitation `json:"sources" validate:"required"`
}

// Ask sends query to the backend and classifies the outcome.
func (c *Client) Ask(ctx context.Context, query string) Result {
	if c.base == "" {
		return Result{Kind: KindConfigError, Err: errors.New(missingURLMessage)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, QueryURL(c.base, query), nil)
	if err != nil {
		return Result{Kind: KindTransportError, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Kind: KindTransportError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{
			Kind:       KindHTTPError,
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Detail:     strings.TrimSpace(string(body)),
		}
	}

	answer, err := c.decode(resp.Body)
	if err != nil {
		return Result{Kind: KindTransportError, Err: err}
	}
	return Result{Kind: KindSuccess, Status: resp.StatusCode, Answer: answer}
}

func (c *Client) decode(r io.Reader) (workspace.Answer, error) {
	var payload wireAnswer
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return workspace.Answer{}, fmt.Errorf("invalid response body: %w", err)
	}
	if err := c.validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return workspace.Answer{}, fmt.Errorf("invalid response body: missing %q", strings.ToLower(fieldErrs[0].Field()))
		}
		return workspace.Answer{}, fmt.Errorf("invalid response body: %w", err)
	}
	citations := make([]workspace.Citation, 0, len(payload.Sources))
	for _, src := range payload.Sources {
		citations = append(citations, workspace.Citation{
			Text:   src.Text,
			Source: src.Source,
			Page:   src.Page,
		})
	}
	return workspace.Answer{Text: *payload.Response, Citations: citations}, nil
}

// statusText strips the numeric code from resp.Status ("500 Internal Server
// Error" becomes "Internal Server Error").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = strconv.Itoa(resp.StatusCode)
	}
	return text
}
