package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const maxBodySize = 1 << 20

type createSessionRequest struct {
	Field int `json:"field"`
}

// sessionResponse - body of the session endpoints; Error is set only on failure.
type sessionResponse struct {
	entity.Session
	Error string `json:"error,omitempty"`
}

// Client talks to the HTTP API of the game server.
type Client struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:     logger.With("component", "rest-client"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSession - provisions a new session with a board of the given size. Not retried.
func (that *Client) CreateSession(ctx context.Context, size int) (*entity.Session, error) {
	log := that.logger.With("method", "CreateSession", "size", size)

	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, size)
	}

	body, err := json.Marshal(createSessionRequest{Field: size})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	session, err := that.do(req)
	if err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	session.Size = size
	log.Info("session created", "sessionID", session.ID)

	return session, nil
}

// GetSession - fetches the current record of an existing session.
func (that *Client) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	log := that.logger.With("method", "GetSession", "sessionID", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.baseURL+"/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	session, err := that.do(req)
	if err != nil {
		log.Warn("failed to get session", "error", err)
		return nil, err
	}

	return session, nil
}

func (that *Client) do(req *http.Request) (*entity.Session, error) {
	resp, err := that.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperror.ErrSessionNotFound
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", apperror.ErrRequestFailed, err)
	}

	var payload sessionResponse
	if err = json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: status %d: failed to unmarshal body: %w", apperror.ErrRequestFailed, resp.StatusCode, err)
	}

	if payload.Error != "" {
		return nil, apperror.NewClientError(payload.Error)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status %d", apperror.ErrRequestFailed, resp.StatusCode)
	}

	if payload.ID == "" {
		return nil, fmt.Errorf("%w: response has no session id", apperror.ErrRequestFailed)
	}

	return &payload.Session, nil
}
