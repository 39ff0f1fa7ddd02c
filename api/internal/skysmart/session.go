package skysmart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sky-answers-bot/api/internal/metrics"
)

const (
	DefaultAuthURL  = "https://api-edu.skysmart.ru/api/v2/auth/auth/student"
	DefaultRoomURL  = "https://api-edu.skysmart.ru/api/v1/task/preview"
	DefaultStepsURL = "https://api-edu.skysmart.ru/api/v1/content/step/load?stepUuid="

	maxBodyBytes = 8 << 20
	maxErrBody   = 512
)

var userAgents = [...]string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:97.0) Gecko/20100101 Firefox/97.0",
}

// Endpoints are the three remote URLs. Steps is a prefix the step uuid is appended to.
type Endpoints struct {
	Auth  string
	Room  string
	Steps string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{Auth: DefaultAuthURL, Room: DefaultRoomURL, Steps: DefaultStepsURL}
}

// withDefaults fills empty fields from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	if e.Auth == "" {
		e.Auth = def.Auth
	}
	if e.Room == "" {
		e.Room = def.Room
	}
	if e.Steps == "" {
		e.Steps = def.Steps
	}
	return e
}

// Client holds what sessions share: the transport and the endpoints.
type Client struct {
	httpc     *http.Client
	endpoints Endpoints
}

func NewClient(httpc *http.Client, ep Endpoints) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpc: httpc, endpoints: ep.withDefaults()}
}

// NewSession starts a session with a fresh identity and no token.
func (c *Client) NewSession() *Session {
	return &Session{
		httpc:     c.httpc,
		endpoints: c.endpoints,
		userAgent: userAgents[rand.Intn(len(userAgents))],
	}
}

// Session owns one bearer token and one client identity. The token is
// fetched on the first authenticated call and reused until Close.
type Session struct {
	httpc     *http.Client
	endpoints Endpoints
	userAgent string

	mu    sync.Mutex
	token string
}

func (s *Session) UserAgent() string { return s.userAgent }

// Close drops the held token. The transport stays usable; a later call
// authenticates again.
func (s *Session) Close() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Do performs an authenticated request and returns the raw response body.
// A non-nil body is sent as JSON.
func (s *Session) Do(ctx context.Context, method, url string, body any) ([]byte, error) {
	token, err := s.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return s.send(req)
}

func (s *Session) ensureToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.endpoints.Auth, nil)
	if err != nil {
		return "", &AuthError{Reason: "build request", Err: err}
	}
	raw, err := s.send(req)
	if err != nil {
		return "", &AuthError{Reason: "credential call failed", Err: err}
	}

	var out struct {
		JWTToken string `json:"jwtToken"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &AuthError{Reason: "malformed credential response", Err: err}
	}
	if out.JWTToken == "" {
		return "", &AuthError{Reason: "token not found in response"}
	}
	s.token = out.JWTToken
	metrics.CredentialAcquisitions.Inc()
	log.Debug().Str("user_agent", s.userAgent).Msg("skysmart: session authenticated")
	return s.token, nil
}

func (s *Session) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", s.userAgent)
	return req, nil
}

func (s *Session) send(req *http.Request) ([]byte, error) {
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return nil, &RemoteError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(x)),
		}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	if len(b) > maxBodyBytes {
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: errors.New("response body too large")}
	}
	return b, nil
}
