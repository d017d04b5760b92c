// Package router classifies raw message text into intents. It is pure:
// authorization and execution happen downstream in the workflows and the
// telegram service.
package router

import "strings"

// Kind identifies the classified intent of a message.
type Kind int

const (
	// None means the message is not addressed to the bot and must be
	// ignored without a response.
	None Kind = iota

	// Free-form keywords (no prefix required).
	CheckNick
	Info
	ListPlayers
	MyNick
	TargetNick
	ApplicationHint
	ApplicationSubmit
	ReportSubmit

	// Prefixed commands.
	Help
	RemoveNick
	SendArtifact
	AdminMutate
	SiteLink
	ListAdmins
	RconRaw
	AddPlayer
	DeletePlayer
)

// Prefixes are the two equivalent command prefixes: Latin and the Cyrillic
// homoglyph users type by accident.
var Prefixes = []string{"!EC", "!ЕС"}

// Intent is a classified message. Args are the whitespace-delimited tokens
// of the argument body; Lines are its trimmed non-empty lines (newlines
// preserved for multi-line commands); Body is the raw remainder.
type Intent struct {
	Kind  Kind
	Args  []string
	Lines []string
	Body  string
}

// Classify maps message text onto an Intent. Free-form keywords win over
// the command prefix; unprefixed non-keyword text classifies as None.
func Classify(text string) Intent {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	switch lower {
	case "инфо":
		return Intent{Kind: Info}
	case "список":
		return Intent{Kind: ListPlayers}
	case "мой ник":
		return Intent{Kind: MyNick}
	case "ник":
		return Intent{Kind: TargetNick}
	case "заявка":
		return Intent{Kind: ApplicationHint}
	}

	if kw, ok := keywordPrefix(raw, lower, "проверить"); ok {
		return withBody(CheckNick, kw)
	}
	if kw, ok := keywordPrefix(raw, lower, "заявка"); ok {
		return withBody(ApplicationSubmit, kw)
	}
	if kw, ok := keywordPrefix(raw, lower, "жалоба"); ok {
		return withBody(ReportSubmit, kw)
	}

	body, ok := stripPrefix(raw)
	if !ok {
		return Intent{Kind: None}
	}
	if body == "" {
		return Intent{Kind: Help}
	}

	command := body
	rest := ""
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		command = body[:i]
		rest = strings.TrimSpace(body[i:])
	}

	switch strings.ToLower(command) {
	case "убрать":
		return withBody(RemoveNick, rest)
	case "сборка":
		return withBody(SendArtifact, rest)
	case "админ":
		return withBody(AdminMutate, rest)
	case "сайт":
		return withBody(SiteLink, rest)
	case "админы":
		return withBody(ListAdmins, rest)
	case "команда":
		return withBody(RconRaw, rest)
	case "добавить":
		return withBody(AddPlayer, rest)
	case "удалить":
		return withBody(DeletePlayer, rest)
	}
	return Intent{Kind: None}
}

// keywordPrefix matches a free-form keyword at the start of the message and
// returns the remainder after it. Cyrillic letters keep their byte length
// under case folding, so slicing by the keyword length is safe.
func keywordPrefix(raw, lower, keyword string) (string, bool) {
	if !strings.HasPrefix(lower, keyword) {
		return "", false
	}
	return strings.TrimSpace(raw[len(keyword):]), true
}

// stripPrefix removes a command prefix, case-insensitively. The second
// result is false when no prefix matched.
func stripPrefix(raw string) (string, bool) {
	upper := strings.ToUpper(raw)
	for _, p := range Prefixes {
		if strings.HasPrefix(upper, p) {
			return strings.TrimSpace(raw[len(p):]), true
		}
	}
	return "", false
}

func withBody(kind Kind, body string) Intent {
	return Intent{
		Kind:  kind,
		Args:  strings.Fields(body),
		Lines: splitLines(body),
		Body:  body,
	}
}

func splitLines(body string) []string {
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
