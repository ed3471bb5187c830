package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/chordbook/internal/bot"
	"github.com/sukalov/chordbook/internal/db"
	"github.com/sukalov/chordbook/internal/editor"
	"github.com/sukalov/chordbook/internal/logger"
)

const (
	// Telegram rejects messages over 4096 characters and splits longer
	// pastes into several messages.
	telegramLimit = 4096
	// leaves room for the code fence
	messageLimit = 4000
	maxButtons   = 10
)

type SongHandlers struct {
	service *editor.Service
	editors map[string]bool

	mu             sync.Mutex
	awaitingSearch map[int64]bool
	awaitingEdit   map[int64]string
}

func NewSongHandlers(service *editor.Service, editorUsernames []string) *SongHandlers {
	editors := make(map[string]bool)
	for _, username := range editorUsernames {
		editors[strings.TrimPrefix(strings.TrimSpace(username), "@")] = true
	}

	return &SongHandlers{
		service:        service,
		editors:        editors,
		awaitingSearch: make(map[int64]bool),
		awaitingEdit:   make(map[int64]string),
	}
}

// Handlers wires the song commands into a bot
func (h *SongHandlers) Handlers() bot.Handlers {
	return bot.Handlers{
		Commands: map[string]bot.HandlerFunc{
			"start":  h.startHandler,
			"songs":  h.listHandler,
			"song":   h.songHandler,
			"find":   h.findHandler,
			"edit":   h.editHandler,
			"cancel": h.cancelHandler,
		},
		Messages: []bot.HandlerFunc{h.messageHandler},
		Callbacks: map[string]bot.HandlerFunc{
			"song": h.songCallback,
		},
	}
}

func (h *SongHandlers) startHandler(m bot.Messenger, update tgbotapi.Update) error {
	// deep links arrive as "/start <song id>"
	if songID := strings.TrimSpace(update.Message.CommandArguments()); songID != "" {
		return h.sendSong(m, update.Message.Chat.ID, songID)
	}

	return m.SendMessage(update.Message.Chat.ID,
		"привет! здесь аккорды и тексты песен.\n\n"+
			"/songs - все песни\n"+
			"/find - поиск по названию или тексту\n"+
			"/song <id> - открыть песню")
}

func (h *SongHandlers) listHandler(m bot.Messenger, update tgbotapi.Update) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	songs, err := h.service.List(ctx)
	if err != nil {
		logger.Error("failed to list songs", "error", err)
		return m.SendMessage(update.Message.Chat.ID, "не получилось загрузить список песен")
	}

	return h.sendSongButtons(m, update.Message.Chat.ID, "песни:", songs)
}

func (h *SongHandlers) songHandler(m bot.Messenger, update tgbotapi.Update) error {
	songID := strings.TrimSpace(update.Message.CommandArguments())
	if songID == "" {
		return m.SendMessage(update.Message.Chat.ID, "укажите id песни: /song <id>")
	}
	return h.sendSong(m, update.Message.Chat.ID, songID)
}

func (h *SongHandlers) songCallback(m bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	if query.Message == nil {
		return nil
	}
	songID := strings.TrimPrefix(query.Data, "song:")
	return h.sendSong(m, query.Message.Chat.ID, songID)
}

func (h *SongHandlers) findHandler(m bot.Messenger, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID

	if query := strings.TrimSpace(update.Message.CommandArguments()); query != "" {
		return h.search(m, chatID, query)
	}

	h.mu.Lock()
	h.awaitingSearch[chatID] = true
	h.mu.Unlock()
	return m.SendMessage(chatID, "напишите название песни или слова из неё")
}

func (h *SongHandlers) editHandler(m bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if message.From == nil || !h.editors[message.From.UserName] {
		return m.SendMessage(message.Chat.ID, "редактировать песни могут только редакторы")
	}

	songID := strings.TrimSpace(message.CommandArguments())
	if songID == "" {
		return m.SendMessage(message.Chat.ID, "укажите id песни: /edit <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	song, _, err := h.service.Load(ctx, songID)
	if err != nil {
		return h.reportLoadError(m, message.Chat.ID, songID, err)
	}

	// the new text has to come back as one message
	if utf8.RuneCountInString(song.Text) >= messageLimit {
		return m.SendMessage(message.Chat.ID,
			"песня слишком длинная для редактирования в телеграме. используйте chordbook songs save")
	}

	h.mu.Lock()
	h.awaitingEdit[message.Chat.ID] = songID
	delete(h.awaitingSearch, message.Chat.ID)
	h.mu.Unlock()

	// plain text, so the source comes back exactly as stored
	source := song.Text
	if strings.TrimSpace(source) == "" {
		source = "(пусто)"
	}
	if err := m.SendMessage(message.Chat.ID, source); err != nil {
		return err
	}
	return m.SendMessage(message.Chat.ID,
		fmt.Sprintf("редактируем «%s». пришлите новый текст песни целиком или /cancel", song.Title))
}

func (h *SongHandlers) cancelHandler(m bot.Messenger, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID

	h.mu.Lock()
	_, editing := h.awaitingEdit[chatID]
	searching := h.awaitingSearch[chatID]
	delete(h.awaitingEdit, chatID)
	delete(h.awaitingSearch, chatID)
	h.mu.Unlock()

	if !editing && !searching {
		return m.SendMessage(chatID, "нечего отменять")
	}
	return m.SendMessage(chatID, "ок. отменили")
}

func (h *SongHandlers) messageHandler(m bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	chatID := message.Chat.ID

	h.mu.Lock()
	songID, editing := h.awaitingEdit[chatID]
	searching := h.awaitingSearch[chatID]
	delete(h.awaitingEdit, chatID)
	delete(h.awaitingSearch, chatID)
	h.mu.Unlock()

	switch {
	case editing:
		return h.save(m, chatID, songID, message.Text)
	case searching:
		return h.search(m, chatID, message.Text)
	default:
		return m.SendMessage(chatID, "ничего не понятно. чтобы найти песню, сначала нажмите /find")
	}
}

func (h *SongHandlers) save(m bot.Messenger, chatID int64, songID, text string) error {
	// a message this long is probably the first part of a split paste
	if utf8.RuneCountInString(text) >= telegramLimit {
		logger.Info("edit rejected as possibly truncated", "song_id", songID, "length", len(text))
		return m.SendMessage(chatID, "текст слишком длинный, песня не сохранена. правка отменена")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed, err := h.service.Save(ctx, songID, text)
	if err != nil {
		logger.Error("failed to save song", "song_id", songID, "error", err)
		return m.SendMessage(chatID, "не получилось сохранить песню")
	}
	if !changed {
		return m.SendMessage(chatID, "текст не изменился")
	}
	return m.SendMessage(chatID, "сохранено")
}

func (h *SongHandlers) search(m bot.Messenger, chatID int64, query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := h.service.Search(ctx, query)
	if err != nil {
		logger.Error("song search failed", "query", query, "error", err)
		return m.SendMessage(chatID, "поиск не удался")
	}
	if len(results) == 0 {
		return m.SendMessage(chatID, "ничего не найдено")
	}

	return h.sendSongButtons(m, chatID, "найденные песни:", results)
}

func (h *SongHandlers) sendSongButtons(m bot.Messenger, chatID int64, title string, songs []db.SongSummary) error {
	if len(songs) == 0 {
		return m.SendMessage(chatID, "песен пока нет")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, song := range songs {
		if len(rows) >= maxButtons {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(song.Title, "song:"+song.ID),
		))
	}

	if len(songs) > maxButtons {
		title += fmt.Sprintf("\n(показаны первые %d из %d)", maxButtons, len(songs))
	}
	return m.SendMessageWithButtons(chatID, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *SongHandlers) sendSong(m bot.Messenger, chatID int64, songID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	song, doc, err := h.service.Load(ctx, songID)
	if err != nil {
		return h.reportLoadError(m, chatID, songID, err)
	}

	rendered, err := h.service.Render(ctx, songID, editor.FormatText)
	if err != nil {
		return h.reportLoadError(m, chatID, songID, err)
	}

	if err := h.service.MarkViewed(ctx, songID); err != nil {
		logger.Error("failed to count song view", "song_id", songID, "error", err)
	}

	title := doc.Metadata.Title
	if title == "" {
		title = song.Title
	}
	header := "*" + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, title) + "*"
	if subtitle := doc.Metadata.Subtitle(); subtitle != "" {
		header += "\n" + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, subtitle)
	}
	if err := m.SendMessageWithMarkdown(chatID, header, true); err != nil {
		return err
	}

	return h.sendCode(m, chatID, rendered)
}

func (h *SongHandlers) sendCode(m bot.Messenger, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return m.SendMessage(chatID, "(пусто)")
	}
	for _, chunk := range splitMessage(text, messageLimit) {
		// backticks would close the code block early
		chunk = strings.ReplaceAll(chunk, "`", "'")
		if err := m.SendMessageWithMarkdown(chatID, "```\n"+chunk+"\n```", true); err != nil {
			return err
		}
	}
	return nil
}

func (h *SongHandlers) reportLoadError(m bot.Messenger, chatID int64, songID string, err error) error {
	if errors.Is(err, db.ErrSongNotFound) {
		return m.SendMessage(chatID, "извините, песни с таким id нет")
	}
	logger.Error("failed to load song", "song_id", songID, "error", err)
	return m.SendMessage(chatID, "произошла ошибка при загрузке песни")
}

// splitMessage cuts text into chunks of at most limit runes, breaking at line
// ends when possible.
func splitMessage(text string, limit int) []string {
	var (
		chunks  []string
		current []rune
	)
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)

		if len(current) > 0 && len(current)+1+len(runes) > limit {
			chunks = append(chunks, string(current))
			current = nil
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}

		for len(current)+len(runes) > limit {
			cut := limit - len(current)
			current = append(current, runes[:cut]...)
			chunks = append(chunks, string(current))
			current = nil
			runes = runes[cut:]
		}
		current = append(current, runes...)
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
