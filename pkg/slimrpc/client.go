// ABOUTME: HTTP client for the LMS JSON-RPC endpoint
// ABOUTME: Handles request framing, auth, timeouts, and error classification
package slimrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// DefaultPort is the LMS web interface port.
const DefaultPort = 9000

// DefaultTimeout bounds a single request when the caller's context has no
// deadline of its own.
const DefaultTimeout = 10 * time.Second

var (
	// ErrInvalidResponse reports a response that is not the JSON shape LMS
	// documents for the command.
	ErrInvalidResponse = errors.New("slimrpc: invalid response from server")

	// ErrPlayerNotFound reports a query against a player ID the server does
	// not know. LMS signals this by dropping the connection mid-request
	// rather than answering.
	ErrPlayerNotFound = errors.New("slimrpc: player not found")

	// ErrCommandFailed reports a command the server did not acknowledge with
	// an empty result object.
	ErrCommandFailed = errors.New("slimrpc: command failed")
)

// StatusError reports a non-200 answer from the LMS web server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slimrpc: server returned HTTP %d", e.Code)
}

// Config holds the connection parameters for one LMS instance.
type Config struct {
	// Host is the LMS address (required).
	Host string

	// Port is the LMS web port. Defaults to DefaultPort.
	Port int

	// Username and Password enable HTTP basic auth when both are set.
	Username string
	Password string

	// HTTPS selects https for the endpoint URL.
	HTTPS bool

	// Timeout overrides DefaultTimeout for requests whose context carries no
	// deadline.
	Timeout time.Duration
}

// request is the slim.request frame POSTed to /jsonrpc.js.
type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Result is the "result" object of a JSON-RPC response. Values keep the types
// the decoder produced: json.Number for numbers, string, bool, []any, and
// map[string]any. LMS mixes numeric and string encodings for the same field
// across versions, so use the accessor helpers rather than type asserting.
type Result map[string]any

// Client issues slim.request calls against one LMS instance over a
// caller-owned HTTP session.
type Client struct {
	http    *http.Client
	config  Config
	baseURL string

	// LastHTTPStatus is the status code of the most recent request, zero
	// before the first call. Useful for surfacing auth problems to a host
	// application.
	LastHTTPStatus int
}

// NewClient creates a client that sends requests through httpClient, or
// http.DefaultClient when nil. The client never closes httpClient; its
// lifecycle belongs to the caller.
func NewClient(httpClient *http.Client, config Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	scheme := "http"
	if config.HTTPS {
		scheme = "https"
	}

	return &Client{
		http:    httpClient,
		config:  config,
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, config.Host, config.Port),
	}
}

// BaseURL returns the server's web root, e.g. "http://192.168.1.2:9000".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query sends a command vector to the server and returns the result object.
// The player argument selects the target player by ID; leave it blank for
// server-wide commands. A nil error guarantees a non-nil Result.
func (c *Client) Query(ctx context.Context, player string, command ...string) (Result, error) {
	if len(command) == 0 {
		return nil, errors.New("slimrpc: empty command")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	frame := request{
		ID:     uuid.NewString(),
		Method: "slim.request",
		Params: []any{player, command},
	}
	body, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("slimrpc: encoding request: %w", err)
	}

	url := c.baseURL + "/jsonrpc.js"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("slimrpc: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Username != "" && c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// LMS handles an unknown player by abruptly closing the connection.
		if player != "" && isDisconnect(err) {
			log.Printf("slimrpc: query run on unknown player %s", player)
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
		}
		return nil, fmt.Errorf("slimrpc: post %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.LastHTTPStatus = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return decodeResult(resp.Body)
}

// Command sends a command vector and checks the acknowledgement. LMS answers
// acknowledged commands with an empty result object; anything else means the
// command was not accepted as sent.
func (c *Client) Command(ctx context.Context, player string, command ...string) error {
	result, err := c.Query(ctx, player, command...)
	if err != nil {
		return err
	}
	if len(result) != 0 {
		return fmt.Errorf("%w: %v returned %v", ErrCommandFailed, command, result)
	}
	return nil
}

// decodeResult parses a response body into the result object.
func decodeResult(r io.Reader) (Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(envelope.Result) == 0 {
		return nil, fmt.Errorf("%w: missing result", ErrInvalidResponse)
	}

	dec = json.NewDecoder(bytes.NewReader(envelope.Result))
	dec.UseNumber()
	var result Result
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: result is not an object: %v", ErrInvalidResponse, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: null result", ErrInvalidResponse)
	}
	return result, nil
}

// isDisconnect reports whether err looks like the server hung up on us
// rather than a failure to reach it.
func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
