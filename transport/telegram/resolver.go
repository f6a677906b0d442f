package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
)

var errNoClient = errors.New("telegram client is not configured")

// ChatResolver asks Telegram for the first name of a requester.
type ChatResolver struct {
	client *bot.Bot
}

func NewChatResolver(client *bot.Bot) *ChatResolver {
	return &ChatResolver{client: client}
}

func (r *ChatResolver) DisplayName(ctx context.Context, requesterID string) (string, error) {
	if r.client == nil {
		return "", errNoClient
	}
	id, err := strconv.ParseInt(requesterID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("requester id %q is not a telegram id: %w", requesterID, err)
	}
	chat, err := r.client.GetChat(ctx, &bot.GetChatParams{ChatID: id})
	if err != nil {
		return "", fmt.Errorf("get chat %d: %w", id, err)
	}
	switch {
	case chat.FirstName != "":
		return chat.FirstName, nil
	case chat.Username != "":
		return chat.Username, nil
	}
	return "User", nil
}
