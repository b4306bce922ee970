package favoritesRepo

import (
	"context"
	"encoding/json"
	"fmt"

	"platepick/models"

	"github.com/go-redis/redis/v8"
)

// FavoritesRepository is the key-value favorites store: full restaurant cards
// keyed per user so the saved list renders without refetching upstream.
type FavoritesRepository interface {
	Add(ctx context.Context, userID string, r models.Restaurant) error
	List(ctx context.Context, userID string) ([]models.Restaurant, error)
	Remove(ctx context.Context, userID, restaurantID string) error
}

const favoritesKeyPrefix = "favorites:"

// RedisFavoritesRepo stores favorites as a Redis hash per user, field = place
// id, value = JSON card.
type RedisFavoritesRepo struct {
	client *redis.Client
}

func NewRedisFavoritesRepo(client *redis.Client) *RedisFavoritesRepo {
	return &RedisFavoritesRepo{client: client}
}

func favoritesKey(userID string) string {
	return favoritesKeyPrefix + userID
}

func (r *RedisFavoritesRepo) Add(ctx context.Context, userID string, rest models.Restaurant) error {
	data, err := json.Marshal(rest)
	if err != nil {
		return fmt.Errorf("failed to marshal favorite: %w", err)
	}
	if err := r.client.HSet(ctx, favoritesKey(userID), rest.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

func (r *RedisFavoritesRepo) List(ctx context.Context, userID string) ([]models.Restaurant, error) {
	vals, err := r.client.HGetAll(ctx, favoritesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	favorites := make([]models.Restaurant, 0, len(vals))
	for _, raw := range vals {
		var rest models.Restaurant
		if err := json.Unmarshal([]byte(raw), &rest); err != nil {
			continue // skip corrupt entries
		}
		favorites = append(favorites, rest)
	}
	return favorites, nil
}

func (r *RedisFavoritesRepo) Remove(ctx context.Context, userID, restaurantID string) error {
	return r.client.HDel(ctx, favoritesKey(userID), restaurantID).Err()
}
