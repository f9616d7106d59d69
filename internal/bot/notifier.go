package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const chatQueueSize = 256

// ChatNotifier duplicates the important events into the user's chat with the
// bot. Notify only enqueues; a single worker does the sending.
type ChatNotifier struct {
	api   api
	queue chan tgbotapi.MessageConfig
	log   *slog.Logger

	once sync.Once
	done chan struct{}
}

// NewChatNotifier starts the sending worker; Close stops it.
func NewChatNotifier(botAPI *tgbotapi.BotAPI) *ChatNotifier {
	return newChatNotifier(botAPI)
}

func newChatNotifier(a api) *ChatNotifier {
	n := &ChatNotifier{
		api:   a,
		queue: make(chan tgbotapi.MessageConfig, chatQueueSize),
		log:   logger.With("component", "chat_notifier"),
		done:  make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *ChatNotifier) Notify(ctx context.Context, event domain.Event) {
	text, ok := chatText(event)
	if !ok || event.UserID <= 0 {
		return
	}
	msg := tgbotapi.NewMessage(event.UserID, text)

	select {
	case <-n.done:
	case n.queue <- msg:
	default:
		logger.FromContext(ctx).Warn("chat notification dropped, queue full", "user_id", event.UserID, "type", event.Type)
	}
}

// SendNotification sends a plain message to a telegram chat right away.
func (n *ChatNotifier) SendNotification(tgID int64, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(tgID, text))
	return err
}

func (n *ChatNotifier) run() {
	for {
		select {
		case <-n.done:
			return
		case msg := <-n.queue:
			if _, err := n.api.Send(msg); err != nil {
				// пользователь мог не открывать чат с ботом
				n.log.Warn("failed to send chat notification", "chat_id", msg.ChatID, "error", err)
			}
		}
	}
}

// Close stops the worker; queued messages that were not sent yet are dropped.
func (n *ChatNotifier) Close() {
	n.once.Do(func() { close(n.done) })
}

// chatText - текст уведомления для чата; остальные события идут только в вебсокет
func chatText(e domain.Event) (string, bool) {
	switch e.Type {
	case domain.EventLightReceived:
		from := fmt.Sprint(e.Data["from_name"])
		if from == "" || e.Data["from_name"] == nil {
			from = "друг"
		}
		return fmt.Sprintf("💫 %s отправил вам %v СВЕТА!\n\nДобрые дела возвращаются удачей. ✨", from, e.Data["amount"]), true
	case domain.EventReferralBonus:
		return fmt.Sprintf("🎁 Ваш друг присоединился к \"Алхимии Разума\"! Начислено +%v СВЕТА.", e.Data["amount"]), true
	case domain.EventMissionCompleted:
		title, _ := e.Data["mission_title"].(string)
		if title == "" {
			return "", false
		}
		return fmt.Sprintf("🎉 Миссия \"%s\" завершена! ⭐ +%v СВЕТА", title, e.Data["light_earned"]), true
	default:
		return "", false
	}
}
