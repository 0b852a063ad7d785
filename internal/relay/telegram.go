package relay

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"printcalc/internal/order"
)

type Notifier interface {
	Notify(ctx context.Context, p order.Payload) error
}

// BotSender is the part of *tgbotapi.BotAPI the notifier needs.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a short order summary to a channel.
type TelegramNotifier struct {
	bot       BotSender
	channelID int64
	logger    *zap.Logger
}

func NewTelegramNotifier(bot BotSender, channelID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:       bot,
		channelID: channelID,
		logger:    logger,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, p order.Payload) error {
	const operation = "relay.TelegramNotifier.Notify"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	n.logger.Info("Preparing channel notification",
		zap.Int64("channel_id", n.channelID),
		zap.String("name", p.Name))

	msg := tgbotapi.NewMessage(n.channelID, ChannelText(p))
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("%s: send to channel %d: %w", operation, n.channelID, err)
	}
	return nil
}

func ChannelText(p order.Payload) string {
	lines := []string{
		"📦 Новый заказ на баннер",
		"Материал: " + p.Material,
		fmt.Sprintf("Размер: %s (%s м²)", p.Size, p.Area),
		fmt.Sprintf("Количество: %d шт", p.Quantity),
	}
	if p.Eyelets {
		lines = append(lines, fmt.Sprintf("Люверсы: ~%d шт", p.EyeletsCount))
	}
	lines = append(lines,
		fmt.Sprintf("Цена: %s руб", order.FormatRub(p.TotalPrice)),
		"Имя: "+p.Name,
		"Контакт: "+order.FormatPhone(p.Phone),
	)
	if p.Email != "" {
		lines = append(lines, "Email: "+p.Email)
	}
	return strings.Join(lines, "\n")
}
