package services

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lotto-office/internal/models"
	"lotto-office/internal/receipt"
)

// Telegram sends admin notifications through the bot. The admin chat is
// registered with /start, or preset from the configured admin IDs.
type Telegram struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger

	mu          sync.RWMutex
	adminChatID int64
}

func NewTelegram(token string, adminChatID int64, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info("telegram bot authorized", zap.String("account", bot.Self.UserName))
	return &Telegram{bot: bot, log: log, adminChatID: adminChatID}, nil
}

// Listen handles bot commands until stop is closed.
func (t *Telegram) Listen(stop <-chan struct{}, isAdmin func(int64) bool) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-stop:
			t.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			t.handleCommand(update.Message, isAdmin)
		}
	}
}

func (t *Telegram) handleCommand(msg *tgbotapi.Message, isAdmin func(int64) bool) {
	switch msg.Command() {
	case "start":
		if msg.From == nil || !isAdmin(msg.From.ID) {
			t.send(msg.Chat.ID, "ไม่มีสิทธิ์ใช้งาน")
			return
		}
		t.mu.Lock()
		t.adminChatID = msg.Chat.ID
		t.mu.Unlock()
		t.send(msg.Chat.ID, fmt.Sprintf("ลงทะเบียนแอดมินแล้ว (chat %d) จะได้รับการแจ้งเตือนที่นี่", msg.Chat.ID))
		t.log.Info("admin chat registered", zap.Int64("chat_id", msg.Chat.ID))
	}
}

// NotifyAdmin sends text to the admin chat. Failures are logged only.
func (t *Telegram) NotifyAdmin(text string) {
	t.mu.RLock()
	chatID := t.adminChatID
	t.mu.RUnlock()

	if chatID == 0 {
		t.log.Warn("admin chat unknown, notification dropped")
		return
	}
	t.send(chatID, text)
}

func (t *Telegram) send(chatID int64, text string) {
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		t.log.Error("telegram send failed", zap.Error(err))
	}
}

// BillMessage is the admin notification for a new bill.
func BillMessage(b models.Bill, agentName string) string {
	r := receipt.Group(b)
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎟️ บิลใหม่ #%d (%s)\n👤 ผู้ซื้อ: %s\n🧑‍💼 ผู้ขาย: %s\n", b.ID, b.PeriodName, b.BuyerName, agentName)
	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "\n%s\n", s.Title)
		for _, row := range s.Rows {
			fmt.Fprintf(&sb, "  %s = %s\n", row.Number, row.Label())
		}
	}
	fmt.Fprintf(&sb, "\n💰 รวม: %s", r.Total.StringFixed(2))
	return sb.String()
}

// ResultMessage is the admin notification for a posted result.
func ResultMessage(p models.Period, r models.Result, rewards decimal.Decimal) string {
	return fmt.Sprintf("🏆 ผลงวด %s\n3 ตัวบน: %s\n2 ตัวบน: %s\n2 ตัวล่าง: %s\nโต๊ด: %s\nยอดจ่ายรางวัล: %s",
		p.Name, r.Result3Up, r.Result2Up, r.Result2Down, strings.Join(r.Result3Toad, " "), rewards.StringFixed(2))
}

// LogNotifier stands in for the bot when no token is configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) NotifyAdmin(text string) {
	n.Log.Info("admin notification", zap.String("text", text))
}
