package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/chordbook/internal/logger"
)

// Messenger is the outgoing side of a bot that handlers talk to
type Messenger interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error
	SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error
}

// HandlerFunc handles one update
type HandlerFunc func(m Messenger, update tgbotapi.Update) error

// Handlers routes updates. Callback handlers are keyed by the part of the
// callback data before the first ':'.
type Handlers struct {
	Commands  map[string]HandlerFunc
	Messages  []HandlerFunc
	Callbacks map[string]HandlerFunc
}

// Bot represents a configurable Telegram bot
type Bot struct {
	Client     *tgbotapi.BotAPI
	updateChan tgbotapi.UpdatesChannel
	stopChan   chan struct{}
	name       string
	mu         sync.Mutex
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := botClient.GetUpdatesChan(updateConfig)

	return &Bot{
		Client:     botClient,
		updateChan: updateChan,
		stopChan:   make(chan struct{}, 1),
		name:       name,
	}, nil
}

// Start processes updates until ctx is done or Stop is called
func (b *Bot) Start(ctx context.Context, handlers Handlers) {
	logger.Info("bot authorized", "bot", b.name, "account", b.Client.Self.UserName)

	for {
		select {
		case update := <-b.updateChan:
			go b.processUpdate(update, handlers)
		case <-b.stopChan:
			b.Client.StopReceivingUpdates()
			return
		case <-ctx.Done():
			b.Client.StopReceivingUpdates()
			return
		}
	}
}

func (b *Bot) processUpdate(update tgbotapi.Update, handlers Handlers) {
	if update.CallbackQuery != nil {
		// stop the client-side spinner whatever the handler does
		if _, err := b.Client.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			logger.Debug("callback answer failed", "bot", b.name, "error", err)
		}
	}

	Dispatch(b, update, handlers, b.name)
}

// Dispatch runs the handler matching update
func Dispatch(m Messenger, update tgbotapi.Update, handlers Handlers, name string) {
	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := handlers.Commands[update.Message.Command()]; exists {
			if err := handler(m, update); err != nil {
				logger.Error("command handler error", "bot", name, "command", update.Message.Command(), "error", err)
			}
			return
		}
	}

	if update.CallbackQuery != nil {
		prefix, _, _ := strings.Cut(update.CallbackQuery.Data, ":")
		if handler, exists := handlers.Callbacks[prefix]; exists {
			if err := handler(m, update); err != nil {
				logger.Error("callback handler error", "bot", name, "data", update.CallbackQuery.Data, "error", err)
			}
		}
		return
	}

	if update.Message == nil {
		return
	}
	for _, handler := range handlers.Messages {
		if err := handler(m, update); err != nil {
			logger.Error("message handler error", "bot", name, "error", err)
		}
	}
}

// Stop halts the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case b.stopChan <- struct{}{}:
	default:
	}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = disableLinks
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := b.Client.Send(msg)
	return err
}
