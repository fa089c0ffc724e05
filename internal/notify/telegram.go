package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier mirrors every notice into an admin chat. Action tokens are
// never posted; the chat only gets a link to the read-only record.
type TelegramNotifier struct {
	api     chatSender
	chatID  int64
	baseURL string
}

var _ Dispatcher = (*TelegramNotifier)(nil)

func NewTelegramNotifier(token string, chatID int64, baseURL string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//api.Debug = true

	return &TelegramNotifier{api: api, chatID: chatID, baseURL: baseURL}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func (t *TelegramNotifier) NotifyApprover(_ context.Context, app models.Application, approver models.Approver, _ string) error {
	msgText := fmt.Sprintf("📨 *Approval requested*\n👤 %s\n", escapeMarkdown(app.FacultyMember.Name))
	msgText += fmt.Sprintf("🏛 %s\n", escapeMarkdown(app.FacultyMember.Department))
	msgText += fmt.Sprintf("📝 %s\n", escapeMarkdown(app.AppointmentType))
	msgText += fmt.Sprintf("✍️ Waiting on %s \\(%s\\)\n", escapeMarkdown(approver.Name), escapeMarkdown(approver.Role))
	msgText += fmt.Sprintf("🔖 Step %d/%d\n", app.CurrentStep+1, len(app.ApprovalChain))
	return t.send(app.ID, msgText)
}

func (t *TelegramNotifier) NotifyOutcome(_ context.Context, app models.Application, outcome models.Outcome) error {
	icon := "✅"
	if outcome == models.OutcomeDenied {
		icon = "❌"
	}
	msgText := fmt.Sprintf("%s *Application %s*\n👤 %s\n", icon, escapeMarkdown(string(outcome)), escapeMarkdown(app.FacultyMember.Name))
	msgText += fmt.Sprintf("📝 %s\n", escapeMarkdown(app.AppointmentType))
	if n := len(app.StatusHistory); n > 0 && app.StatusHistory[n-1].Notes != "" {
		msgText += fmt.Sprintf("📄 %s\n", escapeMarkdown(app.StatusHistory[n-1].Notes))
	}
	return t.send(app.ID, msgText)
}

func (t *TelegramNotifier) send(appID, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "MarkdownV2"

	//telegram refuses buttons pointing at plain http hosts such as localhost
	if strings.HasPrefix(t.baseURL, "https://") {
		link := strings.TrimRight(t.baseURL, "/") + "/api/applications/" + appID
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View Application", link)),
		)
	}

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
