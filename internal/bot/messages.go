package bot

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	openAppButton  = "🧠 Открыть Алхимию Разума"
	profileButton  = "👤 Открыть профиль"
	progressButton = "📊 Посмотреть прогресс"

	helpText = `🔮 Команды бота:

/start - Открыть приложение
/profile - Посмотреть профиль
/progress - Показать прогресс
/help - Эта справка

Основное взаимодействие происходит через веб-приложение.`

	profileText  = "👤 Ваш профиль в приложении:"
	progressText = "📊 Отслеживайте свой прогресс в приложении:"

	unknownCommandText = "❌ Неизвестная команда. Используйте /help для списка команд."
	dataReceivedText   = "Данные получены! 👍"
)

func welcomeText(referralBonus int64, invited bool) string {
	var sb strings.Builder
	sb.WriteString(`🌊 Добро пожаловать в "Алхимию Разума"!`)
	if invited {
		fmt.Fprintf(&sb, "\n🎁 Вы пришли по приглашению! За регистрацию вы и ваш друг получите по +%d СВЕТА!", referralBonus)
	}
	sb.WriteString(`

Это приложение поможет вам:
• Проработать эмоции через 4 стихии
• Освоить медитативные практики
• Собрать коллекцию артефактов
• Отслеживать свой прогресс

Команды - /help
Нажмите кнопку ниже, чтобы начать путешествие:`)
	return sb.String()
}

// webAppPayload - то, что Mini App отправляет через Telegram.WebApp.sendData
type webAppPayload struct {
	Type        string          `json:"type"`
	MissionName string          `json:"missionName"`
	Artifact    string          `json:"artifact"`
	LightEarned json.RawMessage `json:"lightEarned"`
	Level       json.RawMessage `json:"level"`
	ElementName string          `json:"elementName"`
	Amount      json.RawMessage `json:"amount"`
	FriendName  string          `json:"friendName"`
}

// webAppDataReply formats the answer to web_app_data. Broken JSON gets the
// generic reply.
func webAppDataReply(data string) string {
	var p webAppPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return dataReceivedText
	}

	switch p.Type {
	case "mission_completed":
		return fmt.Sprintf("🎉 Поздравляем! Вы завершили миссию \"%s\"!\n\n💎 Получен артефакт: %s\n⭐ Заработано СВЕТА: %s\n📈 Новый уровень: %s",
			p.MissionName, p.Artifact, rawString(p.LightEarned), rawString(p.Level))
	case "element_unlocked":
		return fmt.Sprintf("🔓 Новая стихия разблокирована: %s!\n\nТеперь доступны новые медитации и артефакты.", p.ElementName)
	case "friend_light_sent":
		return fmt.Sprintf("💫 Вы отправили %s СВЕТА пользователю %s!\n\nДобрые дела возвращаются удачей. ✨", rawString(p.Amount), p.FriendName)
	default:
		return dataReceivedText
	}
}

// числа и строки из клиента печатаем как есть
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "0"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
