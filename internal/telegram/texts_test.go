package telegram

import (
	"testing"

	"wlbot/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestReportCardText_LazyResolution verifies that nicknames are resolved
// against whatever player map is current at render time: a target that was
// unregistered at submission becomes a clickable link once bound.
func TestReportCardText_LazyResolution(t *testing.T) {
	rep := &models.Report{
		ReporterID:    500,
		TargetNickRaw: "griefer99",
		Reason:        "грифер",
		Status:        models.ReportNew,
	}

	// Before the target registers: plain text.
	players := map[string]int64{"Reporter": 500}
	text := reportCardText(rep, players, "@reporter")
	assert.Contains(t, text, `От: <a href="tg://user?id=500">Reporter</a>`)
	assert.Contains(t, text, "На: griefer99")
	assert.NotContains(t, text, `id=600`)

	// Target registered later (different case): now clickable.
	players["Griefer99"] = 600
	text = reportCardText(rep, players, "@reporter")
	assert.Contains(t, text, `На: <a href="tg://user?id=600">Griefer99</a>`)
}

func TestReportCardText_StatusLines(t *testing.T) {
	rep := &models.Report{ReporterID: 1, TargetNickRaw: "x", Reason: "r", Status: models.ReportNew}
	assert.Contains(t, reportCardText(rep, nil, "@a"), "🔴 Не решена")

	rep.Status = models.ReportReviewed
	assert.Contains(t, reportCardText(rep, nil, "@a"), "⚡ Рассмотрена")
}

// TestReportCardText_UnboundReporterFallback keeps the card complete when
// the player map is empty, whether because the reporter binding was removed
// or because the map could not be reloaded at render time.
func TestReportCardText_UnboundReporterFallback(t *testing.T) {
	rep := &models.Report{ReporterID: 500, TargetNickRaw: "x", Reason: "r", Status: models.ReportNew}
	text := reportCardText(rep, map[string]int64{}, "@someone")
	assert.Contains(t, text, "От: @someone")
	assert.Contains(t, text, "На: x")
	assert.Contains(t, text, "Причина: r")
}

func TestPlayerListText(t *testing.T) {
	assert.Contains(t, playerListText(nil), "Пусто")

	text := playerListText(map[string]int64{"Steve": 1, "Alex": 2})
	assert.Contains(t, text, `<a href="tg://user?id=1">Steve</a>`)
	assert.Contains(t, text, `<a href="tg://user?id=2">Alex</a>`)
}

func TestCheckNickText(t *testing.T) {
	players := map[string]int64{"Steve": 111}

	text := checkNickText("Steve", players, "There are 1 whitelisted player(s): Steve")
	assert.Contains(t, text, `<a href="tg://user?id=111">Steve</a>`)
	assert.Contains(t, text, "✅ Есть на сервере")

	// No RCON response means "not on server", never an error.
	text = checkNickText("Ghost", players, "")
	assert.Contains(t, text, "❌ Не найден в базе")
	assert.Contains(t, text, "❌ Не найден на сервере")
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp;c", escapeHTML("a <b> &c"))
}

func TestSanitizeNick(t *testing.T) {
	assert.Equal(t, "Steve_01", sanitizeNick("Steve_01"))
	assert.Equal(t, "Steve", sanitizeNick("Стив Steve!"))
	assert.Equal(t, "", sanitizeNick("Стив"))
}
