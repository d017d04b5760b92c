package telegram

import (
	"fmt"
	"sort"
	"strings"

	"wlbot/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// mention renders a user as @username, falling back to a tg://user link for
// accounts without a username.
func mention(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, escapeHTML(u.FirstName))
}

// nickLink renders a nickname as a clickable mention of its bound account.
func nickLink(nick string, telegramID int64) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, telegramID, escapeHTML(nick))
}

func infoText() string {
	return "ℹ️ <b>Информация о боте</b>\n\n" +
		"👤 <b>Автор:</b> Errnick_\n" +
		"📦 <b>Версия:</b> 2.0.0\n\n" +
		"💬 <b>Telegram:</b> <a href=\"https://t.me/Errnick_code\">Инфо о разработке и т.д.</a>\n" +
		"💻 <b>GitHub:</b> <a href=\"https://github.com/Errnick-code/EasyTGWhiteListMC\">Исходный код</a>"
}

func helpText() string {
	cmds := []string{
		"заявка(без !EC)  - создать заявку на whitelist",
		"жалоба(без !EC)  - оставить жалобу на игрока",
		"список(без !EC)  - список игроков",
		"проверить [ник] (без !EC)  - проверка ника",
		"админы - показать список админов",
		"сайт - перейти на магазин/донат",
		"мой ник(без !EC) - покажет ваш ник на сервере",
		"ник(без !EC, в ответ на соо) - покажет ник того на чьё сообщение вы ответили",
		"админ add|remove - добавить или удалить админа [только админ]",
		"сборка - отправить файл сборки [только админ]",
		"команда - выполнить команды на сервере через RCON [только админ]",
		"добавить - добавляет игрока без заявки [только админ]",
		"удалить - удаляет из данных и whitelist [только админ]",
	}
	return "📜 <b>Доступные команды</b>:\n" +
		"Все команды пишутся через !EC (команда)\n\n" +
		strings.Join(cmds, "\n") +
		"\n\n💻 <b>GitHub:</b> <a href=\"https://github.com/Errnick-code/EasyTGWhiteListMC\">Исходный код бота</a>"
}

func applicationHintText() string {
	return "📄 Чтобы подать заявку, напишите её одним сообщением в формате:\n\n" +
		"Заявка\nНик в Minecraft\nЛицензия / пиратка\nВозраст\nОткуда узнали о сервере\n" +
		"Чем будете заниматься\nПочему выбрали наш сервер\n\n" +
		"Пример:\nЗаявка\nErrnick_\nЛицензия\n16\nDiscord\nИграть и помогать новичкам\nДружелюбная атмосфера"
}

func applicationIncompleteText(who string) string {
	return fmt.Sprintf("❗ %s, заявка неполная. Должно быть 7 строк:\n"+
		"Заявка\nНик\nЛицензия / пиратка\nВозраст\nОткуда узнали\nЧем будете заниматься\nПочему выбрали сервер", who)
}

func applicationCardText(app *models.Application, who string) string {
	return fmt.Sprintf("🔐 <b>Новая заявка / WhiteList</b>\n\n"+
		"От: %s\n\n"+
		"🧑 Ник: %s\n"+
		"💻 Тип: %s\n"+
		"🎂 Возраст: %s\n"+
		"🌐 Откуда: %s\n"+
		"🎯 План: %s\n"+
		"❓ Причина: %s",
		who,
		escapeHTML(app.Nick), escapeHTML(app.License), escapeHTML(app.Age),
		escapeHTML(app.Source), escapeHTML(app.Activity), escapeHTML(app.Reason))
}

func reportStatusLine(status models.ReportStatus) string {
	switch status {
	case models.ReportReviewed:
		return "❗ <b>Статус:</b> ⚡ Рассмотрена / ещё не закрыта автором"
	default:
		return "❗ <b>Статус:</b> 🔴 Не решена"
	}
}

// reportCardText renders a report card, resolving reporter and target
// nicknames against the live player map so bindings created after the
// report still become clickable.
func reportCardText(rep *models.Report, players map[string]int64, fallbackReporter string) string {
	reporter := fallbackReporter
	for nick, id := range players {
		if id == rep.ReporterID {
			reporter = nickLink(nick, id)
			break
		}
	}

	target := escapeHTML(rep.TargetNickRaw)
	for nick, id := range players {
		if strings.EqualFold(nick, rep.TargetNickRaw) {
			target = nickLink(nick, id)
			break
		}
	}

	return fmt.Sprintf("📄 <b>Жалоба</b>\nОт: %s\nНа: %s\nПричина: %s\n\n%s",
		reporter, target, escapeHTML(rep.Reason), reportStatusLine(rep.Status))
}

func playerListText(players map[string]int64) string {
	if len(players) == 0 {
		return "<b>Whitelist игроков:</b>\nПусто"
	}
	nicks := make([]string, 0, len(players))
	for nick := range players {
		nicks = append(nicks, nick)
	}
	sort.Strings(nicks)

	var b strings.Builder
	b.WriteString("<b>Whitelist игроков:</b>")
	for _, nick := range nicks {
		b.WriteString("\n🔹 " + nickLink(nick, players[nick]))
	}
	return b.String()
}

func checkNickText(nick string, players map[string]int64, whitelistRaw string) string {
	bound := "❌ Не найден в базе"
	if id, ok := players[nick]; ok {
		bound = nickLink(nick, id)
	}
	server := "❌ Не найден на сервере"
	if whitelistRaw != "" && strings.Contains(whitelistRaw, nick) {
		server = "✅ Есть на сервере"
	}
	return fmt.Sprintf("🔍 Проверка ника: <b>%s</b>\n📄 Привязан к: %s\n🖥 На сервере: %s",
		escapeHTML(nick), bound, server)
}

func orNoResponse(resp string) string {
	if resp == "" {
		return "Нет ответа"
	}
	return escapeHTML(resp)
}

// keyboards

func applicationKeyboard(messageID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Добавить ✅", Callback{CallbackApprove, messageID}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("Отказать ❌", Callback{CallbackDeny, messageID}.Encode()),
		),
	)
}

func reportNewKeyboard(reportID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Рассмотреть ⚡", Callback{CallbackReviewReport, reportID}.Encode()),
		),
	)
}

func reportReviewedKeyboard(reportID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Закрыть ✅", Callback{CallbackCloseReport, reportID}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("Оставить открытой ↩️", Callback{CallbackReopenReport, reportID}.Encode()),
		),
	)
}
