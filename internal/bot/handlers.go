package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/omarshaarawi/courtside/internal/service"
)

const helpText = `Available commands:
/player <name> - Season averages
/game <team or player> - Live, recent or next game
/games <name> - Recent game log
/today - Today's games
/follow <team or player> - Push updates for a team
/unfollow - Stop updates
/mute - Pause updates
/unmute - Resume updates
/pack - Open a pack
/cards - Your cards and tokens
/start <card> <PG|SG|SF|PF|C|bench> - Set a lineup slot
/lineup - Current lineup
/apply <token> <card> - Apply a token
/remove <card> - Remove a card's token
/score [YYYY-MM-DD] - Score your lineup
/submit [YYYY-MM-DD] - Submit your lineup`

// Service is what the handler needs from the fantasy service.
type Service interface {
	PlayerSummary(ctx context.Context, name string) (string, error)
	GameReport(ctx context.Context, query string) (string, error)
	SeasonLog(ctx context.Context, name string) (string, error)
	TodaysSlate(ctx context.Context) (string, error)
	Follow(ctx context.Context, chatID int64, query string) (string, error)
	Unfollow(ctx context.Context, chatID int64) error
	Mute(ctx context.Context, chatID int64)
	Unmute(ctx context.Context, chatID int64)
	OpenPack(ctx context.Context, userID int64) (string, error)
	Inventory(ctx context.Context, userID int64) (string, error)
	SetPosition(ctx context.Context, userID int64, cardRef, pos string) (string, error)
	Lineup(ctx context.Context, userID int64) (string, error)
	ApplyToken(ctx context.Context, userID int64, tokenRef, cardRef string) (string, error)
	RemoveToken(ctx context.Context, userID int64, cardRef string) (string, error)
	ScorePreview(ctx context.Context, userID int64, date string) (string, error)
	SubmitLineup(ctx context.Context, userID int64, date string) (string, error)
}

var _ Service = (*service.FantasyService)(nil)

type Handler struct {
	fantasyService Service
}

func NewHandler(fantasyService Service) *Handler {
	return &Handler{fantasyService: fantasyService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	chatID := update.Message.Chat.ID
	msg := tgbotapi.NewMessage(chatID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	var userID int64
	if update.Message.From != nil {
		userID = update.Message.From.ID
	}

	switch command {
	case "help":
		msg.Text = helpText
	case "player":
		h.withArg(&msg, args, "/player <name>", func() (string, error) {
			return h.fantasyService.PlayerSummary(ctx, args)
		})
	case "game":
		h.withArg(&msg, args, "/game <team or player>", func() (string, error) {
			return h.fantasyService.GameReport(ctx, args)
		})
	case "games":
		h.withArg(&msg, args, "/games <name>", func() (string, error) {
			return h.fantasyService.SeasonLog(ctx, args)
		})
	case "today":
		h.reply(&msg, func() (string, error) { return h.fantasyService.TodaysSlate(ctx) })
	case "follow":
		h.withArg(&msg, args, "/follow <team or player>", func() (string, error) {
			return h.fantasyService.Follow(ctx, chatID, args)
		})
	case "unfollow":
		h.reply(&msg, func() (string, error) {
			return "Stopped following.", h.fantasyService.Unfollow(ctx, chatID)
		})
	case "mute":
		h.fantasyService.Mute(ctx, chatID)
		msg.Text = "🔕 Updates paused. /unmute to resume."
	case "unmute":
		h.fantasyService.Unmute(ctx, chatID)
		msg.Text = "🔔 Updates resumed."
	case "pack":
		h.reply(&msg, func() (string, error) { return h.fantasyService.OpenPack(ctx, userID) })
	case "cards":
		h.reply(&msg, func() (string, error) { return h.fantasyService.Inventory(ctx, userID) })
	case "start":
		h.handleStart(ctx, &msg, userID, args)
	case "lineup":
		h.reply(&msg, func() (string, error) { return h.fantasyService.Lineup(ctx, userID) })
	case "apply":
		fields := strings.Fields(args)
		if len(fields) != 2 {
			msg.Text = "Usage: /apply <token> <card>"
			break
		}
		h.reply(&msg, func() (string, error) {
			return h.fantasyService.ApplyToken(ctx, userID, fields[0], fields[1])
		})
	case "remove":
		h.withArg(&msg, args, "/remove <card>", func() (string, error) {
			return h.fantasyService.RemoveToken(ctx, userID, args)
		})
	case "score":
		h.reply(&msg, func() (string, error) { return h.fantasyService.ScorePreview(ctx, userID, args) })
	case "submit":
		h.reply(&msg, func() (string, error) { return h.fantasyService.SubmitLineup(ctx, userID, args) })
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

// handleStart doubles as the welcome message when sent without arguments.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.MessageConfig, userID int64, args string) {
	if args == "" {
		msg.Text = "Welcome to Courtside! Use /pack to get your first cards and /help to see available commands."
		return
	}
	fields := strings.Fields(args)
	if len(fields) < 2 {
		msg.Text = "Usage: /start <card> <PG|SG|SF|PF|C|bench>"
		return
	}
	pos := fields[len(fields)-1]
	card := strings.Join(fields[:len(fields)-1], " ")
	h.reply(msg, func() (string, error) { return h.fantasyService.SetPosition(ctx, userID, card, pos) })
}

func (h *Handler) withArg(msg *tgbotapi.MessageConfig, args, usage string, fn func() (string, error)) {
	if args == "" {
		msg.Text = "Usage: " + usage
		return
	}
	h.reply(msg, fn)
}

func (h *Handler) reply(msg *tgbotapi.MessageConfig, fn func() (string, error)) {
	text, err := fn()
	if err != nil {
		msg.Text = errorText(err)
		return
	}
	msg.Text = text
}

func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		return "🔍 No player found with that name."
	case errors.Is(err, repository.ErrNotFound):
		return "🔍 Nothing in your inventory matches that."
	case errors.Is(err, service.ErrAmbiguousRef):
		return "More than one item matches. Use a longer id."
	case errors.Is(err, service.ErrStatsUnavailable):
		return "⏳ Stats are still updating. Nothing was submitted, try again shortly."
	}
	return fmt.Sprintf("Something went wrong: %v", err)
}
