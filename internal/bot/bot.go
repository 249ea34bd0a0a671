package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimbot/internal/service"
)

// ErrSendFailed wraps errors returned by Telegram when delivering a reply.
var ErrSendFailed = errors.New("send message failed")

const (
	pollTimeout    = 60
	failureMessage = "Could not record your claim right now, please try again later."
)

// API is the subset of the Telegram client the bot needs. *tgbotapi.BotAPI satisfies it.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes /claim commands from Telegram to the claim service.
type Bot struct {
	api    API
	claims *service.ClaimService
	logger *zap.Logger
}

// Connect authorizes against Telegram with token.
func Connect(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger != nil {
		logger.Info("bot authorized", zap.String("account", api.Self.UserName))
	}
	return api, nil
}

func New(api API, claims *service.ClaimService, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:    api,
		claims: claims,
		logger: logger,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if err := b.HandleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", zap.Error(err))
		}
	}

	return ctx.Err()
}

// HandleMessage answers a single /claim command. Other messages are ignored.
// Failures are reported to the chat where possible and returned to the caller.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	if !msg.IsCommand() || msg.Command() != service.ClaimCommand {
		return nil
	}

	req := service.ClaimRequest{
		AuthorID:   strconv.FormatInt(msg.From.ID, 10),
		AuthorName: authorName(msg.From),
		Text:       msg.Text,
	}
	log := b.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("platform_id", req.AuthorID),
	)
	log.Debug("claim invoked", zap.String("display_name", req.AuthorName), zap.String("args", msg.CommandArguments()))

	claim, err := b.claims.Claim(ctx, req)
	switch {
	case errors.Is(err, service.ErrInvalidArguments):
		log.Info("claim rejected", zap.Error(err))
		return b.reply(msg, service.UsageMessage)
	case err != nil:
		return errors.Join(fmt.Errorf("claim: %w", err), b.reply(msg, failureMessage))
	}

	log.Info("claim recorded",
		zap.Uint("user_id", claim.User.ID),
		zap.Int("x", claim.X),
		zap.Int("y", claim.Y),
	)
	return b.reply(msg, claim.Message())
}

func (b *Bot) reply(to *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = to.MessageID
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("%w: chat %d: %w", ErrSendFailed, to.Chat.ID, err)
	}
	return nil
}

// authorName prefers the Telegram username and falls back to the full name.
func authorName(from *tgbotapi.User) string {
	if name := strings.TrimSpace(from.UserName); name != "" {
		return name
	}
	if name := strings.TrimSpace(from.FirstName + " " + from.LastName); name != "" {
		return name
	}
	return strconv.FormatInt(from.ID, 10)
}
