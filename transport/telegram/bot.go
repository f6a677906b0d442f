package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// incoming is the part of a Telegram update the commands look at.
type incoming struct {
	ChatID   int64
	UserID   int64
	Name     string
	Username string
	Text     string
	// ReplyTo is set when the command answers another user's message;
	// /ride then books for that user.
	ReplyTo *domain.User
}

func (in incoming) requesterID() string { return strconv.FormatInt(in.UserID, 10) }

type Bot struct {
	client  *bot.Bot
	rides   *usecase.RideUsecase
	users   *usecase.UserUsecase
	hours   domain.ServiceHours
	allowed map[int64]struct{}
	logger  *slog.Logger
}

// NewBot accepts a nil client; replies are then only logged.
func NewBot(client *bot.Bot, rides *usecase.RideUsecase, users *usecase.UserUsecase, hours domain.ServiceHours, allowedChats []int64, logger *slog.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = struct{}{}
	}
	return &Bot{
		client:  client,
		rides:   rides,
		users:   users,
		hours:   hours,
		allowed: allowed,
		logger:  logger,
	}
}

// Start long-polls Telegram until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.client.Start(ctx)
}

// StartWebhook registers url with Telegram and processes updates delivered
// to WebhookHandler until ctx is done.
func (b *Bot) StartWebhook(ctx context.Context, url string) error {
	if _, err := b.client.SetWebhook(ctx, &bot.SetWebhookParams{URL: url}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	go b.client.StartWebhook(ctx)
	return nil
}

func (b *Bot) WebhookHandler() http.HandlerFunc {
	return b.client.WebhookHandler()
}

func (b *Bot) AddClient(botClient *bot.Bot) {
	b.client = botClient
}

func (b *Bot) RegisterHandlers() {
	// Регистрируем команды
	for cmd, h := range map[string]func(context.Context, incoming) string{
		"/start":    b.start,
		"/ride":     b.ride,
		"/cancel":   b.cancel,
		"/complete": b.complete,
		"/status":   b.status,
		"/help":     b.help,
	} {
		b.client.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypePrefix, b.wrap(cmd, h))
	}
}

func (b *Bot) wrap(cmd string, h func(context.Context, incoming) string) bot.HandlerFunc {
	return func(ctx context.Context, botClient *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		in := fromMessage(update.Message)
		// "/ride" is also a prefix of "/rideX"; only exact commands count.
		if name := strings.SplitN(firstField(in.Text), "@", 2)[0]; name != cmd {
			return
		}
		b.logger.Info("command received", "command", cmd, "chat_id", in.ChatID, "user_id", in.UserID)
		b.reply(ctx, in.ChatID, b.handle(ctx, in, h))
	}
}

func fromMessage(m *models.Message) incoming {
	in := incoming{
		ChatID:   m.Chat.ID,
		UserID:   m.From.ID,
		Name:     m.From.FirstName,
		Username: m.From.Username,
		Text:     m.Text,
	}
	if r := m.ReplyToMessage; r != nil && r.From != nil && !r.From.IsBot && r.From.ID != m.From.ID {
		in.ReplyTo = &domain.User{TelegramID: r.From.ID, Name: r.From.FirstName, Username: r.From.Username}
	}
	return in
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// handle runs the chat and service-hours checks before a command.
func (b *Bot) handle(ctx context.Context, in incoming, h func(context.Context, incoming) string) string {
	if len(b.allowed) > 0 {
		if _, ok := b.allowed[in.ChatID]; !ok {
			return msgRestricted
		}
	}
	if msg := b.hours.State(b.rides.Now()).Message(); msg != "" {
		return msg
	}
	b.remember(ctx, &domain.User{TelegramID: in.UserID, Name: in.Name, Username: in.Username})
	if in.ReplyTo != nil {
		b.remember(ctx, in.ReplyTo)
	}
	return h(ctx, in)
}

func (b *Bot) remember(ctx context.Context, u *domain.User) {
	if err := b.users.Remember(ctx, u); err != nil {
		b.logger.Warn("cannot store user", "telegram_id", u.TelegramID, "error", err)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.Notify(ctx, chatID, text); err != nil {
		b.logger.Error("send reply", "chat_id", chatID, "error", err)
	}
}

// Notify implements domain.Notifier.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	if b.client == nil {
		b.logger.Info("telegram disabled, message dropped", "chat_id", chatID, "text", text)
		return nil
	}
	_, err := b.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

func (b *Bot) start(_ context.Context, in incoming) string {
	name := in.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(msgStart, name)
}

func (b *Bot) help(context.Context, incoming) string { return msgHelp }

func (b *Bot) ride(ctx context.Context, in incoming) string {
	args, err := parseRideArgs(in.Text)
	switch {
	case errors.Is(err, errUsage):
		return msgRideUsage
	case errors.Is(err, errBadPurpose):
		return msgBadPurpose
	case errors.Is(err, errBadTime):
		return msgBadTime
	}

	requester := in.requesterID()
	if in.ReplyTo != nil {
		requester = strconv.FormatInt(in.ReplyTo.TelegramID, 10)
	}
	ride, err := b.rides.Create(ctx, usecase.CreateRide{
		RequesterID: requester,
		Origin:      args.Origin,
		Destination: args.Destination,
		SlotTime:    args.Slot,
		Purpose:     args.Purpose,
	})
	switch {
	case err == nil:
		return fmt.Sprintf(msgRideCreated, ride.Origin, ride.Destination, ride.SlotTime, ride.Purpose, ride.ID)
	case errors.Is(err, domain.ErrDuplicateBooking):
		return fmt.Sprintf(msgDuplicate, args.Slot)
	case errors.Is(err, domain.ErrSlotInPast):
		return msgPastTime
	case errors.Is(err, domain.ErrInvalidPurpose):
		return msgBadPurpose
	case errors.Is(err, domain.ErrValidation):
		return msgRideUsage
	}
	b.logger.Error("create ride", "requester_id", requester, "error", err)
	return msgGenericError
}

func (b *Bot) complete(ctx context.Context, in incoming) string {
	id, err := parseRideID(in.Text)
	if err != nil {
		return msgCompleteUsage
	}
	err = b.rides.Complete(ctx, id)
	switch {
	case err == nil:
		return fmt.Sprintf(msgCompleted, id)
	case errors.Is(err, domain.ErrRideNotFound):
		return fmt.Sprintf(msgNoSuchRide, id)
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return fmt.Sprintf(msgAlreadyDone, id)
	}
	b.logger.Error("complete ride", "ride_id", id, "error", err)
	return msgGenericError
}

func (b *Bot) cancel(ctx context.Context, in incoming) string {
	id, err := parseRideID(in.Text)
	if errors.Is(err, errNoArguments) {
		return b.cancelLatest(ctx, in)
	}
	if err != nil {
		return msgBadCancelID
	}

	ride, err := b.rides.Get(ctx, id)
	if errors.Is(err, domain.ErrRideNotFound) {
		return fmt.Sprintf(msgNoSuchRide, id)
	}
	if err != nil {
		b.logger.Error("get ride", "ride_id", id, "error", err)
		return msgGenericError
	}
	if ride.RequesterID != in.requesterID() {
		return fmt.Sprintf(msgNotYours, id)
	}

	err = b.rides.Cancel(ctx, id)
	switch {
	case err == nil:
		return fmt.Sprintf(msgCanceled, id)
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return fmt.Sprintf(msgCancelDone, id)
	case errors.Is(err, domain.ErrRideNotFound):
		return fmt.Sprintf(msgNoSuchRide, id)
	}
	b.logger.Error("cancel ride", "ride_id", id, "error", err)
	return msgGenericError
}

func (b *Bot) cancelLatest(ctx context.Context, in incoming) string {
	ride, err := b.rides.CancelLatest(ctx, in.requesterID())
	switch {
	case err == nil:
		return fmt.Sprintf(msgCanceledLast, ride.ID)
	case errors.Is(err, domain.ErrRideNotFound):
		return msgNothingToStop
	}
	b.logger.Error("cancel latest ride", "user_id", in.UserID, "error", err)
	return msgGenericError
}

func (b *Bot) status(ctx context.Context, in incoming) string {
	pending, err := b.rides.ListPendingForRequester(ctx, in.requesterID())
	if err != nil {
		b.logger.Error("list pending rides", "user_id", in.UserID, "error", err)
		return msgGenericError
	}
	completed, err := b.rides.ListCompletedForRequester(ctx, in.requesterID())
	if err != nil {
		b.logger.Error("list completed rides", "user_id", in.UserID, "error", err)
		return msgGenericError
	}
	if len(pending) == 0 && len(completed) == 0 {
		return msgNoRides
	}

	var sb strings.Builder
	writeRides := func(title string, rides []*domain.RideRequest) {
		if len(rides) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s:\n", title)
		for _, r := range rides {
			fmt.Fprintf(&sb, "#%d %s → %s at %s (%s)\n", r.ID, r.Origin, r.Destination, r.SlotTime, r.Purpose)
		}
	}
	writeRides("Pending", pending)
	writeRides("Completed", completed)
	return strings.TrimRight(sb.String(), "\n")
}
