package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const colorTTL = 7 * 24 * time.Hour

// TrackColors is a cached dominant/on-color pair for a track's artwork, so
// repeated plays skip re-decoding the image.
type TrackColors struct {
	Dominant string `json:"dominant"`
	OnColor  string `json:"onColor"`
}

// ColorCache caches extracted artwork colors keyed by track id.
type ColorCache struct {
	client *redis.Client
}

// NewColorCache creates a color cache on the given client.
func NewColorCache(client *redis.Client) *ColorCache {
	return &ColorCache{client: client}
}

func colorKey(trackID int64) string {
	return fmt.Sprintf("trackcolor:%d", trackID)
}

// Get returns the cached colors for a track, or (nil, nil) on a miss.
func (c *ColorCache) Get(ctx context.Context, trackID int64) (*TrackColors, error) {
	raw, err := c.client.Get(ctx, colorKey(trackID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read color cache for track %d: %w", trackID, err)
	}

	var colors TrackColors
	if err := json.Unmarshal([]byte(raw), &colors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached colors for track %d: %w", trackID, err)
	}
	return &colors, nil
}

// Put stores the colors for a track with a TTL.
func (c *ColorCache) Put(ctx context.Context, trackID int64, colors TrackColors) error {
	raw, err := json.Marshal(colors)
	if err != nil {
		return fmt.Errorf("failed to marshal colors for track %d: %w", trackID, err)
	}
	if err := c.client.Set(ctx, colorKey(trackID), raw, colorTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache colors for track %d: %w", trackID, err)
	}
	return nil
}
