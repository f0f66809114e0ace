package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const (
	followsKey   = "follows"
	directoryKey = "players:directory"
)

func cardsKey(userID int64) string   { return fmt.Sprintf("user:%d:cards", userID) }
func tokensKey(userID int64) string  { return fmt.Sprintf("user:%d:tokens", userID) }
func lineupsKey(userID int64) string { return fmt.Sprintf("user:%d:lineups", userID) }

// Repository keeps each user's cards and tokens as JSON in per-user hashes
// and submitted lineups in a list.
type Repository struct {
	client *goredis.Client
}

func NewRepository(client *goredis.Client) *Repository {
	return &Repository{client: client}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

var _ repository.Store = (*Repository)(nil)

func (r *Repository) SaveCard(ctx context.Context, card models.OwnedCard) error {
	return r.hset(ctx, cardsKey(card.UserID), card.ID, card)
}

func (r *Repository) Card(ctx context.Context, userID int64, cardID string) (models.OwnedCard, error) {
	var card models.OwnedCard
	err := r.hget(ctx, cardsKey(userID), cardID, &card)
	return card, err
}

func (r *Repository) Cards(ctx context.Context, userID int64) ([]models.OwnedCard, error) {
	cards, err := hvals[models.OwnedCard](ctx, r.client, cardsKey(userID))
	if err != nil {
		return nil, err
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].AcquiredAt.Before(cards[j].AcquiredAt) })
	return cards, nil
}

func (r *Repository) SaveToken(ctx context.Context, token models.OwnedToken) error {
	return r.hset(ctx, tokensKey(token.UserID), token.ID, token)
}

func (r *Repository) Token(ctx context.Context, userID int64, tokenID string) (models.OwnedToken, error) {
	var token models.OwnedToken
	err := r.hget(ctx, tokensKey(userID), tokenID, &token)
	return token, err
}

func (r *Repository) Tokens(ctx context.Context, userID int64) ([]models.OwnedToken, error) {
	tokens, err := hvals[models.OwnedToken](ctx, r.client, tokensKey(userID))
	if err != nil {
		return nil, err
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].AcquiredAt.Before(tokens[j].AcquiredAt) })
	return tokens, nil
}

func (r *Repository) DeleteToken(ctx context.Context, userID int64, tokenID string) error {
	n, err := r.client.HDel(ctx, tokensKey(userID), tokenID).Result()
	if err != nil {
		return fmt.Errorf("deleting token %s: %w", tokenID, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) SaveLineupResult(ctx context.Context, result models.LineupResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling lineup result: %w", err)
	}
	return r.client.RPush(ctx, lineupsKey(result.UserID), data).Err()
}

func (r *Repository) LineupResults(ctx context.Context, userID int64) ([]models.LineupResult, error) {
	raw, err := r.client.LRange(ctx, lineupsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading lineup results: %w", err)
	}
	out := make([]models.LineupResult, 0, len(raw))
	for _, item := range raw {
		var res models.LineupResult
		if err := json.Unmarshal([]byte(item), &res); err != nil {
			return nil, fmt.Errorf("unmarshaling lineup result: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Repository) SaveFollow(ctx context.Context, chatID int64, teamID int) error {
	return r.client.HSet(ctx, followsKey, strconv.FormatInt(chatID, 10), teamID).Err()
}

func (r *Repository) DeleteFollow(ctx context.Context, chatID int64) error {
	return r.client.HDel(ctx, followsKey, strconv.FormatInt(chatID, 10)).Err()
}

func (r *Repository) Follows(ctx context.Context) (map[int64]int, error) {
	raw, err := r.client.HGetAll(ctx, followsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading follows: %w", err)
	}
	out := make(map[int64]int, len(raw))
	for k, v := range raw {
		chatID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		teamID, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[chatID] = teamID
	}
	return out, nil
}

func (r *Repository) SaveDirectory(ctx context.Context, dir *models.PlayerDirectory) error {
	data, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("marshaling player directory: %w", err)
	}
	return r.client.Set(ctx, directoryKey, data, 0).Err()
}

func (r *Repository) Directory(ctx context.Context) (*models.PlayerDirectory, error) {
	data, err := r.client.Get(ctx, directoryKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading player directory: %w", err)
	}
	var dir models.PlayerDirectory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("unmarshaling player directory: %w", err)
	}
	return &dir, nil
}

func (r *Repository) hset(ctx context.Context, key, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return r.client.HSet(ctx, key, field, data).Err()
}

func (r *Repository) hget(ctx context.Context, key, field string, v any) error {
	data, err := r.client.HGet(ctx, key, field).Bytes()
	if errors.Is(err, goredis.Nil) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", key, field, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling %s/%s: %w", key, field, err)
	}
	return nil
}

func hvals[T any](ctx context.Context, client *goredis.Client, key string) ([]T, error) {
	raw, err := client.HVals(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			return nil, fmt.Errorf("unmarshaling %s: %w", key, err)
		}
		out = append(out, v)
	}
	return out, nil
}
