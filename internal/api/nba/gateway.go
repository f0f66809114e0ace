package nba

import (
	"context"
	"fmt"

	"github.com/omarshaarawi/courtside/internal/api/balldontlie"
	"github.com/omarshaarawi/courtside/internal/models"
)

// maxPages bounds a cursor walk in case upstream keeps handing back cursors.
const maxPages = 50

type Upstream interface {
	ListGames(ctx context.Context, p balldontlie.GamesParams) (*models.GamesResponse, error)
	GetGame(ctx context.Context, id int) (*models.Game, error)
	ListStats(ctx context.Context, p balldontlie.StatsParams) (*models.StatsResponse, error)
	BoxScores(ctx context.Context, gameIDs []int) (*models.BoxScoresResponse, error)
	SeasonAverages(ctx context.Context, playerID, season int) (*models.SeasonAveragesResponse, error)
	ListPlayers(ctx context.Context, p balldontlie.PlayersParams) (*models.PlayersResponse, error)
}

// API is the paginating gateway in front of the upstream client. Every list
// call walks meta.next_cursor until upstream stops returning one.
type API struct {
	client  Upstream
	perPage int
}

func NewAPI(client Upstream, perPage int) *API {
	if perPage <= 0 {
		perPage = 100
	}
	return &API{client: client, perPage: perPage}
}

type GamesQuery struct {
	Seasons []int
	TeamIDs []int
	GameIDs []int
	Dates   []string
}

type StatsQuery struct {
	PlayerIDs []int
	Seasons   []int
	GameIDs   []int
	Dates     []string
}

func (a *API) Games(ctx context.Context, q GamesQuery) ([]models.Game, error) {
	var games []models.Game
	var cursor *int
	for page := 0; page < maxPages; page++ {
		resp, err := a.client.ListGames(ctx, balldontlie.GamesParams{
			Seasons: q.Seasons,
			TeamIDs: q.TeamIDs,
			GameIDs: q.GameIDs,
			Dates:   q.Dates,
			PerPage: a.perPage,
			Cursor:  cursor,
		})
		if err != nil {
			return nil, err
		}
		games = append(games, resp.Data...)
		if resp.Meta.NextCursor == nil {
			return games, nil
		}
		cursor = resp.Meta.NextCursor
	}
	return games, fmt.Errorf("games query exceeded %d pages", maxPages)
}

func (a *API) Game(ctx context.Context, id int) (*models.Game, error) {
	return a.client.GetGame(ctx, id)
}

func (a *API) Stats(ctx context.Context, q StatsQuery) ([]models.GameStat, error) {
	var stats []models.GameStat
	var cursor *int
	for page := 0; page < maxPages; page++ {
		resp, err := a.client.ListStats(ctx, balldontlie.StatsParams{
			PlayerIDs: q.PlayerIDs,
			Seasons:   q.Seasons,
			GameIDs:   q.GameIDs,
			Dates:     q.Dates,
			PerPage:   a.perPage,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, err
		}
		for _, line := range resp.Data {
			gameID := 0
			if line.Game != nil {
				gameID = line.Game.ID
			}
			teamID := 0
			if line.Team != nil {
				teamID = line.Team.ID
			}
			stats = append(stats, StatFromLine(line, gameID, teamID))
		}
		if resp.Meta.NextCursor == nil {
			return stats, nil
		}
		cursor = resp.Meta.NextCursor
	}
	return stats, fmt.Errorf("stats query exceeded %d pages", maxPages)
}

func (a *API) BoxScores(ctx context.Context, gameIDs []int) ([]models.BoxScore, error) {
	resp, err := a.client.BoxScores(ctx, gameIDs)
	if err != nil {
		return nil, err
	}
	boxes := make([]models.BoxScore, 0, len(resp.Data))
	for _, raw := range resp.Data {
		boxes = append(boxes, boxScoreFromResponse(raw))
	}
	return boxes, nil
}

// SeasonAverages returns nil without error when the player has no averages for the season.
func (a *API) SeasonAverages(ctx context.Context, playerID, season int) (*models.SeasonAverages, error) {
	resp, err := a.client.SeasonAverages(ctx, playerID, season)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (a *API) Players(ctx context.Context, search string) ([]models.Player, error) {
	return a.players(ctx, balldontlie.PlayersParams{Search: search})
}

// ActivePlayers lists players on a current roster.
func (a *API) ActivePlayers(ctx context.Context) ([]models.Player, error) {
	return a.players(ctx, balldontlie.PlayersParams{Active: true})
}

func (a *API) players(ctx context.Context, params balldontlie.PlayersParams) ([]models.Player, error) {
	var players []models.Player
	params.PerPage = a.perPage
	for page := 0; page < maxPages; page++ {
		resp, err := a.client.ListPlayers(ctx, params)
		if err != nil {
			return nil, err
		}
		players = append(players, resp.Data...)
		if resp.Meta.NextCursor == nil {
			return players, nil
		}
		params.Cursor = resp.Meta.NextCursor
	}
	return players, fmt.Errorf("players query exceeded %d pages", maxPages)
}
