package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/service"
	"alchemy_webapp/internal/telegram"
)

// startMessage returns the welcome text and the Mini App URL for /start.
// A ref_<id> payload from someone who has no account yet marks the URL so
// the app applies the referral on first login.
func (b *Bot) startMessage(ctx context.Context, fromID int64, payload string) (string, string) {
	bonus := b.svc.Referrals.Bonus()
	referrerID, ok := telegram.ParseRefPayload(payload)
	if !ok || referrerID == fromID {
		return welcomeText(bonus, false), b.cfg.WebAppURL
	}

	log := logger.FromContext(ctx)
	_, err := b.svc.Users.Get(ctx, fromID)
	switch {
	case err == nil:
		// уже зарегистрирован, бонус не положен
		log.Info("referral link opened by existing user", "referrer_id", referrerID)
		return welcomeText(bonus, false), b.cfg.WebAppURL
	case !errors.Is(err, service.ErrUserNotFound):
		log.Warn("failed to check user on start", "error", err)
	}

	log.Info("new user came by referral link", "referrer_id", referrerID)
	return welcomeText(bonus, true), telegram.WebAppURL(b.cfg.WebAppURL, referrerID, fromID)
}

// progressMessage adds a short summary when the user already has an account.
func (b *Bot) progressMessage(ctx context.Context, userID int64) string {
	ov, err := b.svc.Users.Overview(ctx, userID)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			logger.FromContext(ctx).Warn("failed to load overview", "error", err)
		}
		return progressText
	}

	var sb strings.Builder
	sb.WriteString(progressText)
	fmt.Fprintf(&sb, "\n\n📈 Уровень: %d\n⭐ СВЕТ: %d\n🏆 Миссий пройдено: %d\n🧘 Минут медитации: %d\n🔥 Дней подряд: %d\n",
		ov.User.Level, ov.User.LightBalance, ov.User.TotalMissionsCompleted, ov.User.TotalMeditationMinutes, ov.User.StreakDays)

	for _, ep := range ov.Elements {
		name := ep.ElementID
		if el, ok := b.svc.Catalog.Element(ep.ElementID); ok {
			name = strings.TrimSpace(el.Emoji + " " + el.Name)
		}
		fmt.Fprintf(&sb, "\n%s: %d/%d (%d%%)", name, ep.Completed, ep.Total, ep.Percentage)
	}
	return sb.String()
}

func (b *Bot) handleUser(ctx context.Context, args string) string {
	userID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || userID <= 0 {
		return "❌ Использование: /user &lt;tg_id&gt;"
	}

	ov, err := b.svc.Users.Overview(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return "❌ Пользователь не найден"
		}
		return fmt.Sprintf("❌ Ошибка: %s", html.EscapeString(err.Error()))
	}
	u := ov.User

	username := "-"
	if u.Username != "" {
		username = "@" + html.EscapeString(u.Username)
	}

	return fmt.Sprintf(`<b>👤 Пользователь</b>

ID: <code>%d</code>
Имя: %s
Username: %s
⭐ СВЕТ: %d
📈 Уровень: %d
🏆 Миссий: %d
🧘 Минут медитации: %d
🔥 Серия: %d дн.
👥 Приглашено: %d
💎 Артефактов: %d
📅 Создан: %s`,
		u.ID, html.EscapeString(u.FirstName), username, u.LightBalance, u.Level,
		u.TotalMissionsCompleted, u.TotalMeditationMinutes, u.StreakDays,
		ov.ReferralCount, len(ov.Artifacts), u.CreatedAt.Format("02.01.2006 15:04"))
}

// /addlight <tg_id> <сумма>, сумма может быть отрицательной
func (b *Bot) handleAddLight(ctx context.Context, adminID int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "❌ Использование: /addlight &lt;tg_id&gt; &lt;сумма&gt;"
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || userID <= 0 {
		return "❌ Неверный tg_id"
	}
	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || amount == 0 {
		return "❌ Неверная сумма"
	}

	balance, err := b.svc.Balance.AdjustLight(ctx, userID, amount)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ Пользователь не найден"
	case errors.Is(err, service.ErrInsufficientLight):
		return "❌ Баланс не может стать отрицательным"
	case err != nil:
		return fmt.Sprintf("❌ Ошибка: %s", html.EscapeString(err.Error()))
	}

	logger.FromContext(ctx).Info("admin adjusted light", "admin_id", adminID, "user_id", userID, "amount", amount, "balance", balance)
	return fmt.Sprintf("✅ Баланс пользователя <code>%d</code> изменён на %+d\n⭐ Новый баланс: %d", userID, amount, balance)
}
