package packs

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/models"
)

var ErrEmptyDirectory = errors.New("no players to draw from")

// Rand is the randomness a Generator draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type Config struct {
	PlayerCards int
	TokenCards  int
	Contracts   map[models.Rarity]int
}

func DefaultConfig() Config {
	return Config{
		PlayerCards: 4,
		TokenCards:  1,
		Contracts: map[models.Rarity]int{
			models.RarityCommon:    3,
			models.RarityRare:      5,
			models.RarityLegendary: 8,
		},
	}
}

// Pack is what a user receives when opening one pack.
type Pack struct {
	ID     string
	Cards  []models.OwnedCard
	Tokens []models.OwnedToken
}

type Generator struct {
	cfg     Config
	rng     Rand
	catalog []models.TokenEffect
	clock   clockwork.Clock
	newID   func() string
}

type Option func(*Generator)

func WithRand(r Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func WithClock(c clockwork.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

func WithCatalog(tokens []models.TokenEffect) Option {
	return func(g *Generator) { g.catalog = tokens }
}

func WithIDs(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

func NewGenerator(cfg Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		catalog: DefaultCatalog(),
		clock:   clockwork.NewRealClock(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DrawRarity returns common 70%, rare 25% and legendary 5% of the time.
func (g *Generator) DrawRarity() models.Rarity {
	switch n := g.rng.IntN(100); {
	case n < 70:
		return models.RarityCommon
	case n < 95:
		return models.RarityRare
	default:
		return models.RarityLegendary
	}
}

// Open draws a pack for userID. Player cards are drawn uniformly from
// players; each card's rarity is drawn independently.
func (g *Generator) Open(userID int64, players []models.Player) (Pack, error) {
	if len(players) == 0 {
		return Pack{}, ErrEmptyDirectory
	}

	now := g.clock.Now()
	pack := Pack{ID: g.newID()}

	for i := 0; i < g.cfg.PlayerCards; i++ {
		p := players[g.rng.IntN(len(players))]
		rarity := g.DrawRarity()
		pack.Cards = append(pack.Cards, models.OwnedCard{
			ID:                 g.newID(),
			UserID:             userID,
			PlayerID:           p.ID,
			PlayerName:         p.FullName(),
			TeamID:             p.Team.ID,
			Position:           g.lineupPosition(p.Position),
			Rarity:             rarity,
			ContractsRemaining: g.cfg.Contracts[rarity],
			AcquiredAt:         now,
		})
	}

	for i := 0; i < g.cfg.TokenCards; i++ {
		effect, ok := g.drawToken(g.DrawRarity())
		if !ok {
			break
		}
		pack.Tokens = append(pack.Tokens, models.OwnedToken{
			ID:         g.newID(),
			UserID:     userID,
			Effect:     effect,
			AcquiredAt: now,
		})
	}
	return pack, nil
}

func (g *Generator) drawToken(rarity models.Rarity) (models.TokenEffect, bool) {
	var pool []models.TokenEffect
	for _, t := range g.catalog {
		if t.Rarity == rarity {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = g.catalog
	}
	if len(pool) == 0 {
		return models.TokenEffect{}, false
	}
	return pool[g.rng.IntN(len(pool))], true
}

// lineupPosition maps an upstream position such as "G", "F-C" or "C" onto
// a lineup slot, using the first listed role.
func (g *Generator) lineupPosition(raw string) models.Position {
	role, _, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(raw)), "-")
	switch role {
	case "C":
		return models.Center
	case "G":
		return []models.Position{models.PointGuard, models.ShootingGuard}[g.rng.IntN(2)]
	case "F":
		return []models.Position{models.SmallForward, models.PowerForward}[g.rng.IntN(2)]
	case "PG", "SG", "SF", "PF":
		return models.Position(role)
	}
	return models.LineupPositions[g.rng.IntN(len(models.LineupPositions))]
}

func value(v float64) *float64 { return &v }

func DefaultCatalog() []models.TokenEffect {
	return []models.TokenEffect{
		{ID: "hot-hand", Name: "Hot Hand", EffectType: models.EffectScoreMultiplier, EffectValue: value(1.2), Description: "1.2x fantasy points", Rarity: models.RarityCommon},
		{ID: "double-double", Name: "Double-Double", EffectType: models.EffectStatThreshold, EffectValue: value(5), Description: "+5 at 25 fantasy points", Rarity: models.RarityCommon},
		{ID: "extension", Name: "Extension", EffectType: models.EffectContractAdd, EffectValue: value(1), Description: "+1 contract", Rarity: models.RarityCommon},
		{ID: "on-fire", Name: "On Fire", EffectType: models.EffectScoreMultiplier, EffectValue: value(1.5), Description: "1.5x fantasy points", Rarity: models.RarityRare},
		{ID: "big-night", Name: "Big Night", EffectType: models.EffectStatThreshold, EffectValue: value(12), Description: "+12 at 25 fantasy points", Rarity: models.RarityRare},
		{ID: "coin-flip", Name: "Coin Flip", EffectType: models.EffectScoreVariance, Description: "Double or half", Rarity: models.RarityRare},
		{ID: "max-deal", Name: "Max Deal", EffectType: models.EffectContractAdd, EffectValue: value(4), Description: "+4 contracts", Rarity: models.RarityLegendary},
		{ID: "mvp", Name: "MVP", EffectType: models.EffectScoreMultiplier, EffectValue: value(2), Description: "2x fantasy points", Rarity: models.RarityLegendary},
	}
}
