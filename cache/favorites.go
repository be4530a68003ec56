package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const favoritesKey = "favorites"

// FavoritesStore persists the favorited track-id set across restarts.
type FavoritesStore interface {
	Add(ctx context.Context, trackID int64) error
	Remove(ctx context.Context, trackID int64) error
	All(ctx context.Context) ([]int64, error)
}

// RedisFavorites implements FavoritesStore on a redis set.
type RedisFavorites struct {
	client *redis.Client
}

// NewRedisFavorites creates a favorites store on the given client.
func NewRedisFavorites(client *redis.Client) *RedisFavorites {
	return &RedisFavorites{client: client}
}

// Add marks a track as favorited.
func (f *RedisFavorites) Add(ctx context.Context, trackID int64) error {
	if err := f.client.SAdd(ctx, favoritesKey, trackID).Err(); err != nil {
		return fmt.Errorf("failed to add favorite %d: %w", trackID, err)
	}
	return nil
}

// Remove unmarks a favorited track.
func (f *RedisFavorites) Remove(ctx context.Context, trackID int64) error {
	if err := f.client.SRem(ctx, favoritesKey, trackID).Err(); err != nil {
		return fmt.Errorf("failed to remove favorite %d: %w", trackID, err)
	}
	return nil
}

// All returns every favorited track id.
func (f *RedisFavorites) All(ctx context.Context) ([]int64, error) {
	members, err := f.client.SMembers(ctx, favoritesKey).Result()
	if err != nil {
		if err == redis.Nil {
			return []int64{}, nil
		}
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
