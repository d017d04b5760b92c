package models

// ReportStatus is the lifecycle state of a player report.
type ReportStatus string

const (
	ReportNew      ReportStatus = "NEW"
	ReportReviewed ReportStatus = "REVIEWED"
	ReportClosed   ReportStatus = "CLOSED"
)

// Report is a complaint from a registered player about another player,
// keyed by the Telegram message id of the submission. TargetNickRaw is kept
// verbatim and resolved against the live player map at render time, so a
// target registered after the report still becomes clickable.
type Report struct {
	MessageID     int
	ReporterID    int64
	TargetNickRaw string
	Reason        string
	Status        ReportStatus

	// Message id of the rendered report card (the one carrying buttons).
	CardMessageID int
}
