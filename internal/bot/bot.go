package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"
	"alchemy_webapp/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// api - часть *tgbotapi.BotAPI, которой пользуется бот
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// update/message расширяют типы библиотеки полем web_app_data,
// которого нет в telegram-bot-api v5.5.
type update struct {
	UpdateID int      `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	tgbotapi.Message
	WebAppData *webAppData `json:"web_app_data,omitempty"`
}

type webAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

// Bot serves the user commands and the admin commands of the Mini App bot.
type Bot struct {
	api    api
	svc    *service.Services
	cfg    *config.Config
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewWithAPI builds the bot on an already authorized client, so the chat
// notifier and the bot share one connection.
func NewWithAPI(botAPI *tgbotapi.BotAPI, cfg *config.Config, svc *service.Services) *Bot {
	b := newBot(botAPI, cfg, svc)
	b.log.Info("bot authorized", "username", botAPI.Self.UserName)
	return b
}

func newBot(a api, cfg *config.Config, svc *service.Services) *Bot {
	return &Bot{
		api:    a,
		svc:    svc,
		cfg:    cfg,
		stopCh: make(chan struct{}),
		log:    logger.With("component", "bot"),
	}
}

// Start runs the long polling loop until Stop is called.
func (b *Bot) Start() {
	offset := 0
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		default:
		}

		updates, err := b.getUpdates(offset)
		if err != nil {
			b.log.Error("failed to get updates", "error", err)
			select {
			case <-b.stopCh:
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			if !b.track() {
				return
			}
			go func(msg *message) {
				defer b.wg.Done()
				b.handleMessage(msg)
			}(u.Message)
		}
	}
}

func (b *Bot) getUpdates(offset int) ([]update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = 60
	cfg.AllowedUpdates = []string{"message"}

	resp, err := b.api.Request(cfg)
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// track регистрирует обработчик в wg; после Stop новые не запускаются
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return false
	}
	b.wg.Add(1)
	return true
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	close(b.stopCh)
	b.mu.Unlock()

	b.log.Info("stopping bot...")

	// ждём обработчики, но не дольше 10 секунд
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) handleMessage(msg *message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if msg.From != nil {
		ctx = logger.ContextWith(ctx, "tg_id", msg.From.ID)
	}

	switch {
	case msg.WebAppData != nil:
		metrics.BotUpdates.WithLabelValues("web_app_data").Inc()
		b.reply(ctx, msg, webAppDataReply(msg.WebAppData.Data), nil)
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	}
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, msg *message) {
	cmd := msg.Command()
	var fromID int64
	if msg.From != nil {
		fromID = msg.From.ID
	}

	switch cmd {
	case "start":
		text, url := b.startMessage(ctx, fromID, msg.CommandArguments())
		b.reply(ctx, msg, text, webAppKeyboard(openAppButton, url))

	case "help":
		b.reply(ctx, msg, helpText, nil)

	case "profile":
		b.reply(ctx, msg, profileText, webAppKeyboard(profileButton, b.cfg.WebAppURL+"/profile"))

	case "progress":
		b.reply(ctx, msg, b.progressMessage(ctx, fromID), webAppKeyboard(progressButton, b.cfg.WebAppURL+"/profile"))

	case "user", "addlight":
		if !b.cfg.IsAdmin(fromID) {
			cmd = "unknown"
			b.reply(ctx, msg, unknownCommandText, nil)
			break
		}
		var response string
		if cmd == "user" {
			response = b.handleUser(ctx, msg.CommandArguments())
		} else {
			response = b.handleAddLight(ctx, fromID, msg.CommandArguments())
		}
		b.replyHTML(ctx, msg, response)

	default:
		cmd = "unknown"
		b.reply(ctx, msg, unknownCommandText, nil)
	}

	metrics.BotUpdates.WithLabelValues(cmd).Inc()
}

func (b *Bot) reply(ctx context.Context, msg *message, text string, markup any) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if markup != nil {
		out.ReplyMarkup = markup
	}
	b.send(ctx, out)
}

func (b *Bot) replyHTML(ctx context.Context, msg *message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = "HTML"
	out.ReplyToMessageID = msg.MessageID
	b.send(ctx, out)
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.FromContext(ctx).Error("error sending message", "error", err)
	}
}

// webAppButton - inline-кнопка, открывающая Mini App
type webAppButton struct {
	Text   string `json:"text"`
	WebApp struct {
		URL string `json:"url"`
	} `json:"web_app"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

func webAppKeyboard(text, url string) inlineKeyboard {
	btn := webAppButton{Text: text}
	btn.WebApp.URL = url
	return inlineKeyboard{InlineKeyboard: [][]webAppButton{{btn}}}
}
