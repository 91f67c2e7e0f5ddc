// Package notify delivers monthly rollup reports over Telegram.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mydash/internal/rollup"
)

// TelegramNotifier sends formatted rollup summaries to a single chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMonthlyReport formats and sends the rollup for one month.
func (n *TelegramNotifier) SendMonthlyReport(result rollup.Result) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatMonthlyReport(result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatMonthlyReport renders the rollup as a Telegram markdown message.
func FormatMonthlyReport(result rollup.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 *Monthly Report — %s*\n\n", result.MonthKey)

	fmt.Fprintf(&b, "💸 *Spending*\n")
	fmt.Fprintf(&b, "   • Total: %s THB\n", result.TotalSpend)
	fmt.Fprintf(&b, "   • Top category: %s\n", result.TopCategory)
	fmt.Fprintf(&b, "   • Planned (%s): %s THB\n", result.Tier, result.PlannedTotal)
	if result.SpendVariance.IsNegative() {
		fmt.Fprintf(&b, "   • Over plan by %s THB\n", result.SpendVariance.Neg())
	} else {
		fmt.Fprintf(&b, "   • Under plan by %s THB\n", result.SpendVariance)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "🏋️ *Workouts*\n")
	fmt.Fprintf(&b, "   • Sessions: %d\n", result.WorkoutCount)
	fmt.Fprintf(&b, "   • Active days: %d / %d\n\n", result.ActiveWorkoutDays, result.DaysInMonth)

	fmt.Fprintf(&b, "🍺 *Drinking*\n")
	fmt.Fprintf(&b, "   • Days: %d / %d\n", result.Drinks.DrinkingDays, result.Drinks.TotalDaysElapsed)
	if result.Drinks.TopReasons != "" {
		fmt.Fprintf(&b, "   • Top reasons: %s\n", result.Drinks.TopReasons)
	}
	fmt.Fprintf(&b, "   • Trend: %s\n", result.Drinks.Trend)

	return b.String()
}
