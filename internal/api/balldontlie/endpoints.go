package balldontlie

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/omarshaarawi/courtside/internal/models"
)

// GamesParams filters a /games page. Zero values are omitted.
type GamesParams struct {
	Seasons []int
	TeamIDs []int
	GameIDs []int
	Dates   []string
	PerPage int
	Cursor  *int
}

type StatsParams struct {
	PlayerIDs []int
	Seasons   []int
	GameIDs   []int
	Dates     []string
	PerPage   int
	Cursor    *int
}

type PlayersParams struct {
	Search string
	// Active restricts the listing to players on a current roster.
	Active  bool
	PerPage int
	Cursor  *int
}

func addInts(q url.Values, key string, values []int) {
	for _, v := range values {
		q.Add(key, strconv.Itoa(v))
	}
}

func addPage(q url.Values, perPage int, cursor *int) {
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	if cursor != nil {
		q.Set("cursor", strconv.Itoa(*cursor))
	}
}

func (c *Client) ListGames(ctx context.Context, p GamesParams) (*models.GamesResponse, error) {
	q := url.Values{}
	addInts(q, "seasons[]", p.Seasons)
	addInts(q, "team_ids[]", p.TeamIDs)
	addInts(q, "game_ids[]", p.GameIDs)
	for _, d := range p.Dates {
		q.Add("dates[]", d)
	}
	addPage(q, p.PerPage, p.Cursor)

	var resp models.GamesResponse
	if err := c.Get(ctx, "/v1/games", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetGame(ctx context.Context, id int) (*models.Game, error) {
	var resp models.GameResponse
	if err := c.Get(ctx, fmt.Sprintf("/v1/games/%d", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching game %d: %w", id, err)
	}
	return &resp.Data, nil
}

func (c *Client) ListStats(ctx context.Context, p StatsParams) (*models.StatsResponse, error) {
	q := url.Values{}
	addInts(q, "player_ids[]", p.PlayerIDs)
	addInts(q, "seasons[]", p.Seasons)
	addInts(q, "game_ids[]", p.GameIDs)
	for _, d := range p.Dates {
		q.Add("dates[]", d)
	}
	addPage(q, p.PerPage, p.Cursor)

	var resp models.StatsResponse
	if err := c.Get(ctx, "/v1/stats", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	return &resp, nil
}

func (c *Client) BoxScores(ctx context.Context, gameIDs []int) (*models.BoxScoresResponse, error) {
	q := url.Values{}
	addInts(q, "game_ids[]", gameIDs)

	var resp models.BoxScoresResponse
	if err := c.Get(ctx, "/v1/box_scores", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching box scores: %w", err)
	}
	return &resp, nil
}

func (c *Client) SeasonAverages(ctx context.Context, playerID, season int) (*models.SeasonAveragesResponse, error) {
	q := url.Values{}
	q.Set("season", strconv.Itoa(season))
	q.Set("player_id", strconv.Itoa(playerID))

	var resp models.SeasonAveragesResponse
	if err := c.Get(ctx, "/v1/season_averages", q, &resp); err != nil {
		return nil, fmt.Errorf("fetching season averages: %w", err)
	}
	return &resp, nil
}

func (c *Client) ListPlayers(ctx context.Context, p PlayersParams) (*models.PlayersResponse, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	addPage(q, p.PerPage, p.Cursor)

	endpoint := "/v1/players"
	if p.Active {
		endpoint = "/v1/players/active"
	}

	var resp models.PlayersResponse
	if err := c.Get(ctx, endpoint, q, &resp); err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	return &resp, nil
}
