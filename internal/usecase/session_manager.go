package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
)

const (
	sessionCreationErrorTitle = "Session creation error"
	sessionCreationErrorText  = "Failed to create new session"
)

type sessionClient interface {
	CreateSession(ctx context.Context, size int) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	List(ctx context.Context) ([]*entity.Session, error)
}

// SessionManager provisions sessions and keeps a record of the ones created here.
type SessionManager struct {
	logger   *slog.Logger
	client   sessionClient
	repo     sessionRepo
	notifier Notifier
	pageURL  string
	now      func() time.Time
}

func NewSessionManager(logger *slog.Logger, client sessionClient, repo sessionRepo, notifier Notifier, pageURL string) *SessionManager {
	return &SessionManager{
		logger:   logger.With("component", "session-manager"),
		client:   client,
		repo:     repo,
		notifier: notifier,
		pageURL:  strings.TrimRight(pageURL, "/"),
		now:      time.Now,
	}
}

// Create - provisions a session of the given board size and returns it with its shareable link.
func (that *SessionManager) Create(ctx context.Context, size int) (*entity.Session, string, error) {
	log := that.logger.With("method", "Create", "size", size)

	session, err := that.client.CreateSession(ctx, size)
	if err != nil {
		log.Error("failed to create session", "error", err)
		that.notifier.Notify(Notification{
			Title:       sessionCreationErrorTitle,
			Description: sessionCreationErrorText,
			Severity:    SeverityError,
		})

		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	session.CreatedAt = that.now()

	if err = that.repo.CreateOrUpdate(ctx, session); err != nil {
		log.Warn("failed to store session", "sessionID", session.ID, "error", err)
	}

	return session, that.Link(session.ID), nil
}

// Link - address the second player opens to join the session.
func (that *SessionManager) Link(id string) string {
	return that.pageURL + "/sessions/" + url.PathEscape(id)
}

// Get - stored record first, otherwise asks the game server and remembers the answer.
func (that *SessionManager) Get(ctx context.Context, id string) (*entity.Session, error) {
	log := that.logger.With("method", "Get", "sessionID", id)

	session, err := that.repo.GetByID(ctx, id)
	if err == nil {
		return session, nil
	}

	if !errors.Is(err, repository.ErrSessionNotFound) {
		log.Warn("failed to read stored session", "error", err)
	}

	session, err = that.client.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = that.now()
	}

	if err = that.repo.CreateOrUpdate(ctx, session); err != nil {
		log.Warn("failed to store session", "error", err)
	}

	return session, nil
}

func (that *SessionManager) List(ctx context.Context) ([]*entity.Session, error) {
	sessions, err := that.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}
