package repository

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const cleanupInterval = time.Minute

type memorySession struct {
	cache *gocache.Cache
}

// NewMemorySessionRepository - process local store of created sessions, used when redis is not configured.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	return &memorySession{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	stored := *session
	that.cache.SetDefault(session.ID, &stored)

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	value, ok := that.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session := *value.(*entity.Session)

	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.cache.Get(id); !ok {
		return ErrSessionNotFound
	}

	that.cache.Delete(id)

	return nil
}

func (that *memorySession) List(_ context.Context) ([]*entity.Session, error) {
	items := that.cache.Items()

	sessions := make([]*entity.Session, 0, len(items))
	for _, item := range items {
		session := *item.Object.(*entity.Session)
		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}
