// Package telegram receives Telegram updates, routes them through the
// command router into the workflows, and renders results back to the chat.
package telegram

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/config"
	"wlbot/backend/internal/rcon"
	"wlbot/backend/internal/router"
	"wlbot/backend/internal/storage"
	"wlbot/backend/internal/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const adminOnlyText = "❌ Только админ может использовать эту команду"

// BotService receives Telegram updates and drives the whitelist workflows.
type BotService struct {
	Bot     *tgbotapi.BotAPI
	Cfg     *config.Config
	Store   storage.Store
	Guard   *auth.Guard
	Rcon    rcon.Client
	Apps    *workflow.Applications
	Reports *workflow.Reports
	Audit   audit.Recorder
}

// NewBotService authorizes against the Bot API and wires the service.
func NewBotService(cfg *config.Config, s storage.Store, g *auth.Guard, rc rcon.Client,
	apps *workflow.Applications, reps *workflow.Reports, rec audit.Recorder) (*BotService, error) {

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	bot.Debug = false
	log.Printf("INFO: Authorized on account %s", bot.Self.UserName)

	return &BotService{
		Bot:     bot,
		Cfg:     cfg,
		Store:   s,
		Guard:   g,
		Rcon:    rc,
		Apps:    apps,
		Reports: reps,
		Audit:   rec,
	}, nil
}

// Run is the main loop. Each update is handled on its own goroutine, so
// back-to-back events are processed concurrently; the workflows serialize
// access to their own state internally.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.Bot.GetUpdatesChan(u)

	for update := range updates {
		go s.handleUpdate(update)
	}
}

func (s *BotService) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		s.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		s.handleCallbackQuery(update.CallbackQuery)
	}
}

// --- message handling ---

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.Text == "" || msg.From == nil || msg.From.IsBot {
		return
	}
	if msg.Chat.ID != s.Cfg.ChatID {
		return
	}

	in := router.Classify(msg.Text)
	switch in.Kind {
	case router.None:
		return
	case router.CheckNick:
		s.handleCheckNick(msg, in)
	case router.Info:
		s.reply(msg, infoText())
	case router.ListPlayers:
		s.handleListPlayers(msg)
	case router.MyNick:
		s.handleMyNick(msg)
	case router.TargetNick:
		s.handleTargetNick(msg)
	case router.ApplicationHint:
		s.reply(msg, applicationHintText())
	case router.ApplicationSubmit:
		s.handleApplicationSubmit(msg, in)
	case router.ReportSubmit:
		s.handleReportSubmit(msg, in)
	case router.Help:
		s.reply(msg, helpText())
	case router.RemoveNick:
		s.handleRemoveNick(msg, in)
	case router.SendArtifact:
		s.handleSendArtifact(msg)
	case router.AdminMutate:
		s.handleAdminMutate(msg, in)
	case router.SiteLink:
		s.reply(msg, "🌐 Наш магазин / донат: "+s.Cfg.SiteURL)
	case router.ListAdmins:
		s.handleListAdmins(msg)
	case router.RconRaw:
		s.handleRconRaw(msg, in)
	case router.AddPlayer:
		s.handleAddPlayer(msg, in)
	case router.DeletePlayer:
		s.handleDeletePlayer(msg, in)
	}
}

func (s *BotService) handleCheckNick(msg *tgbotapi.Message, in router.Intent) {
	if len(in.Args) == 0 {
		s.reply(msg, "❗ Укажите ник для проверки, например:\nпроверить Errnick_")
		return
	}
	nick := in.Args[0]

	players, err := s.Store.Players()
	if err != nil {
		s.replyStorageError(msg, err)
		return
	}
	s.reply(msg, checkNickText(nick, players, s.Rcon.Whitelist()))
}

func (s *BotService) handleListPlayers(msg *tgbotapi.Message) {
	players, err := s.Store.Players()
	if err != nil {
		s.replyStorageError(msg, err)
		return
	}
	s.reply(msg, playerListText(players))
}

func (s *BotService) handleMyNick(msg *tgbotapi.Message) {
	players, err := s.Store.Players()
	if err != nil {
		s.replyStorageError(msg, err)
		return
	}
	if nick, ok := storage.NickOf(players, msg.From.ID); ok {
		s.reply(msg, fmt.Sprintf("🔹 Ваш ник на сервере: <b>%s</b>", escapeHTML(nick)))
		return
	}
	s.reply(msg, "❌ Ваш ник не найден в базе данных сервера")
}

func (s *BotService) handleTargetNick(msg *tgbotapi.Message) {
	targetID := msg.From.ID
	label := "Ваш ник"
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		targetID = msg.ReplyToMessage.From.ID
		label = "Ник игрока " + mention(msg.ReplyToMessage.From)
	}

	players, err := s.Store.Players()
	if err != nil {
		s.replyStorageError(msg, err)
		return
	}
	if nick, ok := storage.NickOf(players, targetID); ok {
		s.reply(msg, fmt.Sprintf("🔹 %s: <b>%s</b>", label, escapeHTML(nick)))
		return
	}
	s.reply(msg, "❌ Ник не найден в базе данных сервера")
}

func (s *BotService) handleApplicationSubmit(msg *tgbotapi.Message, in router.Intent) {
	app, err := s.Apps.Submit(msg.From.ID, msg.MessageID, in.Lines)
	switch {
	case errors.Is(err, workflow.ErrMalformedSubmission):
		s.reply(msg, applicationIncompleteText(mention(msg.From)))
		return
	case errors.Is(err, workflow.ErrInvalidNickname):
		s.reply(msg, fmt.Sprintf("❗ %s, ник должен содержать только английские буквы, цифры и _ и быть длиной %d–%d символов",
			mention(msg.From), config.NickMinLen, config.NickMaxLen))
		return
	case errors.Is(err, workflow.ErrNicknameTaken):
		s.reply(msg, fmt.Sprintf("❌ Ник <b>%s</b> уже занят", escapeHTML(in.Lines[0])))
		return
	case err != nil:
		s.replyStorageError(msg, err)
		return
	}

	card := s.replyWithKeyboard(msg, applicationCardText(app, mention(msg.From)), applicationKeyboard(msg.MessageID))
	if card != nil {
		s.Apps.SetCard(msg.MessageID, card.MessageID)
	}
}

func (s *BotService) handleReportSubmit(msg *tgbotapi.Message, in router.Intent) {
	rep, err := s.Reports.Submit(msg.From.ID, msg.MessageID, in.Lines)
	switch {
	case errors.Is(err, workflow.ErrMalformedSubmission):
		s.reply(msg, fmt.Sprintf("❗ %s, заполните жалобу корректно: две строки\nНа ник\nПричина", mention(msg.From)))
		return
	case errors.Is(err, workflow.ErrNotRegistered):
		s.reply(msg, fmt.Sprintf("❌ %s, вы не можете писать жалобы, вас нет в базе", mention(msg.From)))
		return
	case err != nil:
		s.replyStorageError(msg, err)
		return
	}

	// The card must go out even when the player map cannot be reloaded,
	// otherwise the accepted report would have no buttons at all. Nicknames
	// re-resolve on the next card edit anyway.
	players, err := s.Store.Players()
	if err != nil {
		log.Printf("ERROR: Failed to load players for report card: %v", err)
		players = map[string]int64{}
	}
	card := s.replyWithKeyboard(msg, reportCardText(rep, players, mention(msg.From)), reportNewKeyboard(msg.MessageID))
	if card != nil {
		s.Reports.SetCard(msg.MessageID, card.MessageID)
	}
}

func (s *BotService) handleRemoveNick(msg *tgbotapi.Message, in router.Intent) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}
	if len(in.Args) == 0 {
		return
	}
	nick := in.Args[0]
	s.Rcon.RemoveFromWhitelist(nick)
	s.Audit.Record(msg.From.UserName, "whitelist_remove", nick, "")
	s.reply(msg, fmt.Sprintf("❌ Ник %s удалён из whitelist админом @%s", escapeHTML(nick), msg.From.UserName))
}

func (s *BotService) handleSendArtifact(msg *tgbotapi.Message) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}

	entries, err := os.ReadDir(s.Cfg.DataDir)
	if err != nil {
		log.Printf("ERROR: Failed to read data dir: %v", err)
		s.reply(msg, "❌ Файл сборки не найден в папке BotFile")
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), config.ArtifactExt) {
			continue
		}
		s.reply(msg, "📦 Сборка сервера:")
		doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(filepath.Join(s.Cfg.DataDir, e.Name())))
		if _, err := s.Bot.Send(doc); err != nil {
			log.Printf("ERROR: Failed to send artifact %s: %v", e.Name(), err)
		}
		return
	}
	s.reply(msg, "❌ Файл сборки не найден в папке BotFile")
}

func (s *BotService) handleAdminMutate(msg *tgbotapi.Message, in router.Intent) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}
	if len(in.Args) < 2 {
		return
	}
	sub := strings.ToLower(in.Args[0])
	target := in.Args[1]
	if !strings.HasPrefix(target, "@") {
		return
	}
	target = strings.TrimPrefix(target, "@")

	switch sub {
	case "add":
		if err := s.Guard.Add(msg.From.UserName, target); err != nil {
			s.replyStorageError(msg, err)
			return
		}
		s.reply(msg, fmt.Sprintf("✅ Пользователь @%s добавлен в админы", target))
	case "remove":
		if target == s.Guard.MainAdmin {
			return
		}
		if err := s.Guard.Remove(msg.From.UserName, target); err != nil {
			s.replyStorageError(msg, err)
			return
		}
		s.reply(msg, fmt.Sprintf("❌ Пользователь @%s удалён из админов", target))
	}
}

func (s *BotService) handleListAdmins(msg *tgbotapi.Message) {
	admins, err := s.Guard.Admins()
	if err != nil {
		s.replyStorageError(msg, err)
		return
	}
	lines := make([]string, len(admins))
	for i, a := range admins {
		lines[i] = "@" + a
	}
	s.reply(msg, "<b>Список админов:</b>\n"+strings.Join(lines, "\n"))
}

func (s *BotService) handleRconRaw(msg *tgbotapi.Message, in router.Intent) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}
	if len(in.Lines) == 0 {
		s.reply(msg, "❌ Укажите хотя бы одну команду для RCON")
		return
	}

	quoted := make([]string, len(in.Lines))
	for i, cmd := range in.Lines {
		s.Rcon.Send(cmd)
		s.Audit.Record(msg.From.UserName, "rcon_raw", "", cmd)
		quoted[i] = "<code>" + escapeHTML(cmd) + "</code>"
	}
	s.reply(msg, fmt.Sprintf("✅ %d команд(ы) успешно отправлены на сервер:\n%s",
		len(in.Lines), strings.Join(quoted, "\n")))
}

func sanitizeNick(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *BotService) handleAddPlayer(msg *tgbotapi.Message, in router.Intent) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}

	var nick string
	if len(in.Lines) > 0 {
		nick = sanitizeNick(in.Lines[0])
	}
	license := "Лицензия"
	if len(in.Lines) > 1 {
		license = in.Lines[1]
	}

	if nick == "" {
		s.reply(msg, fmt.Sprintf("❗ %s, укажите ник игрока", mention(msg.From)))
		return
	}
	if len(nick) < config.NickMinLen || len(nick) > config.NickMaxLen {
		s.reply(msg, fmt.Sprintf("❗ %s, ник должен быть длиной %d–%d символов",
			mention(msg.From), config.NickMinLen, config.NickMaxLen))
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		s.reply(msg, fmt.Sprintf("❗ %s, нужно ответить на сообщение игрока для привязки Telegram ID", mention(msg.From)))
		return
	}
	playerID := msg.ReplyToMessage.From.ID

	resp := s.Rcon.AddToWhitelist(nick, license)
	if err := s.Store.SetPlayer(nick, playerID); err != nil {
		s.replyStorageError(msg, err)
		return
	}
	s.Audit.Record(msg.From.UserName, "player_add", nick, resp)
	s.reply(msg, fmt.Sprintf("✅ Игрок %s (%s) добавлен в whitelist\n📄 RCON: %s",
		escapeHTML(nick), escapeHTML(license), orNoResponse(resp)))
}

func (s *BotService) handleDeletePlayer(msg *tgbotapi.Message, in router.Intent) {
	if !s.Guard.IsAdmin(msg.From.UserName) {
		s.reply(msg, adminOnlyText)
		return
	}

	var nick string
	if len(in.Lines) > 0 {
		nick = in.Lines[0]
	}
	if nick == "" && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		players, err := s.Store.Players()
		if err != nil {
			s.replyStorageError(msg, err)
			return
		}
		found, ok := storage.NickOf(players, msg.ReplyToMessage.From.ID)
		if !ok {
			s.reply(msg, "❌ Ник этого игрока не найден в базе")
			return
		}
		nick = found
	}
	if nick == "" {
		s.reply(msg, fmt.Sprintf("❗ %s, укажите ник или ответьте на сообщение игрока", mention(msg.From)))
		return
	}

	// Both removes go out regardless of which list the nick is on, and the
	// map entry goes away even when the server gave no response.
	std, easy := s.Rcon.RemoveFromWhitelist(nick)
	if err := s.Store.RemovePlayer(nick); err != nil {
		s.replyStorageError(msg, err)
		return
	}
	s.Audit.Record(msg.From.UserName, "player_remove", nick, "")
	s.reply(msg, fmt.Sprintf("❌ Игрок %s удалён из whitelist\n📄 RCON:\nWhitelist: %s\nEasyWhitelist: %s",
		escapeHTML(nick), orNoResponse(std), orNoResponse(easy)))
}

// --- callback handling ---

func (s *BotService) handleCallbackQuery(q *tgbotapi.CallbackQuery) {
	if q.Message == nil || q.From == nil {
		return
	}

	cb, ok := DecodeCallback(q.Data)
	if !ok {
		log.Printf("WARN: Ignoring unknown callback payload %q", q.Data)
		return
	}

	switch cb.Kind {
	case CallbackApprove, CallbackDeny:
		s.handleDecision(q, cb)
	case CallbackReviewReport:
		s.handleReportReview(q, cb)
	case CallbackCloseReport:
		s.handleReportClose(q, cb)
	case CallbackReopenReport:
		s.handleReportReopen(q, cb)
	}
}

func (s *BotService) handleDecision(q *tgbotapi.CallbackQuery, cb Callback) {
	out, err := s.Apps.Decide(q.From.UserName, cb.ID, cb.Kind == CallbackApprove)
	switch {
	case errors.Is(err, auth.ErrNotAdmin):
		s.alert(q, "❌ Только админ может нажимать кнопки заявок")
		return
	case errors.Is(err, workflow.ErrNotFound):
		s.alert(q, "❌ Заявка не найдена или уже обработана")
		return
	case err != nil:
		// The application was already consumed by Decide, so the submission
		// and the card still have to go away even when the map write failed.
		log.Printf("ERROR: Application decision failed: %v", err)
		s.alert(q, "❌ Не удалось сохранить привязку, обратитесь к админам")
		if out != nil {
			s.deleteMessage(q.Message.Chat.ID, out.App.MessageID)
			s.deleteMessage(q.Message.Chat.ID, q.Message.MessageID)
		}
		return
	}

	admin := "@" + q.From.UserName
	player := nickLink(out.App.Nick, out.App.SubmitterID)
	if out.Approved {
		s.answer(q, "Заявка одобрена ✅")
		if out.MapUpdated {
			s.sendToChat(q.Message.Chat.ID, fmt.Sprintf("%s, ваша заявка принята админом %s ✅", player, admin))
		} else {
			s.sendToChat(q.Message.Chat.ID, fmt.Sprintf("%s, сервер не ответил на добавление в whitelist, заявка отклонена. Обратитесь к %s", player, admin))
		}
	} else {
		s.answer(q, "Заявка отклонена ❌")
		s.sendToChat(q.Message.Chat.ID, fmt.Sprintf("%s, ваша заявка отклонена админом %s ❌", player, admin))
	}

	s.deleteMessage(q.Message.Chat.ID, out.App.MessageID)
	s.deleteMessage(q.Message.Chat.ID, q.Message.MessageID)
}

func (s *BotService) handleReportReview(q *tgbotapi.CallbackQuery, cb Callback) {
	rep, err := s.Reports.Review(q.From.UserName, cb.ID)
	switch {
	case errors.Is(err, auth.ErrNotAdmin):
		s.alert(q, "❌ Только админ может рассматривать")
		return
	case errors.Is(err, workflow.ErrNotFound):
		s.alert(q, "❌ Жалоба не найдена или уже удалена")
		return
	case errors.Is(err, workflow.ErrBadTransition):
		s.answer(q, "Жалоба уже рассмотрена")
		return
	case err != nil:
		log.Printf("ERROR: Report review failed: %v", err)
		return
	}

	s.answer(q, "Жалоба помечена как рассмотренная ⚡")
	s.renderReportCard(q, rep.MessageID, reportReviewedKeyboard(cb.ID))
}

func (s *BotService) handleReportClose(q *tgbotapi.CallbackQuery, cb Callback) {
	rep, err := s.Reports.Close(q.From.ID, cb.ID)
	switch {
	case errors.Is(err, workflow.ErrNotAllowed):
		s.alert(q, "❌ Только автор жалобы может закрыть")
		return
	case errors.Is(err, workflow.ErrNotFound):
		s.alert(q, "❌ Жалоба не найдена или уже удалена")
		return
	case errors.Is(err, workflow.ErrBadTransition):
		s.alert(q, "❌ Жалоба ещё не рассмотрена")
		return
	case err != nil:
		log.Printf("ERROR: Report close failed: %v", err)
		return
	}

	s.answer(q, "Жалоба закрыта ✅")
	s.deleteMessage(q.Message.Chat.ID, rep.MessageID)
	s.deleteMessage(q.Message.Chat.ID, q.Message.MessageID)
}

func (s *BotService) handleReportReopen(q *tgbotapi.CallbackQuery, cb Callback) {
	rep, err := s.Reports.Reopen(q.From.ID, cb.ID)
	switch {
	case errors.Is(err, workflow.ErrNotAllowed):
		s.alert(q, "❌ Только автор жалобы может возобновить")
		return
	case errors.Is(err, workflow.ErrNotFound):
		s.alert(q, "❌ Жалоба не найдена или уже удалена")
		return
	case errors.Is(err, workflow.ErrBadTransition):
		s.alert(q, "❌ Жалоба и так открыта")
		return
	case err != nil:
		log.Printf("ERROR: Report reopen failed: %v", err)
		return
	}

	s.answer(q, "Жалоба возобновлена 🔴")
	s.renderReportCard(q, rep.MessageID, reportNewKeyboard(cb.ID))
}

// renderReportCard re-renders a report card in place, resolving nicknames
// against the live player map.
func (s *BotService) renderReportCard(q *tgbotapi.CallbackQuery, reportID int, kb tgbotapi.InlineKeyboardMarkup) {
	rep, ok := s.Reports.Get(reportID)
	if !ok {
		return
	}
	players, err := s.Store.Players()
	if err != nil {
		log.Printf("ERROR: Failed to load players for report card: %v", err)
		players = map[string]int64{}
	}

	fallback := fmt.Sprintf(`<a href="tg://user?id=%d">Автор</a>`, rep.ReporterID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		q.Message.Chat.ID, q.Message.MessageID,
		reportCardText(rep, players, fallback), kb)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := s.Bot.Send(edit); err != nil {
		log.Printf("ERROR: Failed to edit report card %d: %v", reportID, err)
	}
}

// --- transport helpers ---

// reply sends a reply to msg, retrying once without the reply anchor when
// the original message has already been deleted.
func (s *BotService) reply(msg *tgbotapi.Message, text string) *tgbotapi.Message {
	return s.send(msg.Chat.ID, msg.MessageID, text, nil)
}

func (s *BotService) replyWithKeyboard(msg *tgbotapi.Message, text string, kb tgbotapi.InlineKeyboardMarkup) *tgbotapi.Message {
	return s.send(msg.Chat.ID, msg.MessageID, text, &kb)
}

func (s *BotService) sendToChat(chatID int64, text string) *tgbotapi.Message {
	return s.send(chatID, 0, text, nil)
}

func (s *BotService) send(chatID int64, replyTo int, text string, kb *tgbotapi.InlineKeyboardMarkup) *tgbotapi.Message {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	out.ReplyToMessageID = replyTo
	if kb != nil {
		out.ReplyMarkup = *kb
	}

	sent, err := s.Bot.Send(out)
	if err != nil && replyTo != 0 && isReplyNotFound(err) {
		out.ReplyToMessageID = 0
		sent, err = s.Bot.Send(out)
	}
	if err != nil {
		log.Printf("ERROR: Failed to send Telegram message: %v", err)
		return nil
	}
	return &sent
}

func isReplyNotFound(err error) bool {
	return strings.Contains(err.Error(), "replied message not found") ||
		strings.Contains(err.Error(), "message to be replied not found")
}

func (s *BotService) replyStorageError(msg *tgbotapi.Message, err error) {
	log.Printf("ERROR: Storage operation failed: %v", err)
	s.reply(msg, "❌ Непредвиденная ошибка хранилища, попробуйте позже")
}

// answer acknowledges a callback with a toast; stale-query failures are
// logged and swallowed.
func (s *BotService) answer(q *tgbotapi.CallbackQuery, text string) {
	if _, err := s.Bot.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		if strings.Contains(err.Error(), "query is too old") {
			log.Printf("WARN: Stale callback query ignored")
			return
		}
		log.Printf("ERROR: Failed to answer callback: %v", err)
	}
}

// alert acknowledges a callback with a blocking alert popup.
func (s *BotService) alert(q *tgbotapi.CallbackQuery, text string) {
	if _, err := s.Bot.Request(tgbotapi.NewCallbackWithAlert(q.ID, text)); err != nil {
		log.Printf("ERROR: Failed to answer callback with alert: %v", err)
	}
}

func (s *BotService) deleteMessage(chatID int64, messageID int) {
	if _, err := s.Bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.Printf("WARN: Failed to delete message %d in chat %d: %v", messageID, chatID, err)
	}
}
