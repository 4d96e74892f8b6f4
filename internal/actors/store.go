package actors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrActorNotFound = errors.New("actor not found")

// Filter narrows List. Zero value lists every actor.
type Filter struct {
	TrackedOnly bool
	Statuses    []string
}

// Store reads and mutates actor profiles.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns actors ordered by display name.
func (s *Store) List(ctx context.Context, f Filter) ([]Actor, error) {
	q := s.db.WithContext(ctx).Model(&Actor{})
	if f.TrackedOnly {
		q = q.Where("is_tracked = ?", true)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, strings.ToLower(strings.TrimSpace(st)))
		}
		q = q.Where("notebook_status = ANY(?)", pq.Array(statuses))
	}

	var out []Actor
	if err := q.Order("display_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return out, nil
}

// ListActors satisfies the geography engine's actor source.
func (s *Store) ListActors(ctx context.Context) ([]Actor, error) {
	return s.List(ctx, Filter{})
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (Actor, error) {
	var a Actor
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Actor{}, ErrActorNotFound
	}
	if err != nil {
		return Actor{}, fmt.Errorf("get actor: %w", err)
	}
	return a, nil
}

// MarkTracked flags the actor as tracked. An idle actor is queued for its
// first refresh at the same time.
func (s *Store) MarkTracked(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrActorNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Actor
		err := tx.First(&a, "id = ?", uid).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActorNotFound
		}
		if err != nil {
			return fmt.Errorf("load actor: %w", err)
		}

		updates := map[string]interface{}{"is_tracked": true}
		if a.NotebookStatus == "" || a.NotebookStatus == StatusIdle {
			updates["notebook_status"] = StatusRunning
			updates["notebook_message"] = "Queued for refresh."
			updates["notebook_updated_at"] = time.Now().UTC()
		}
		if err := tx.Model(&a).Updates(updates).Error; err != nil {
			return fmt.Errorf("mark tracked: %w", err)
		}
		return nil
	})
}
