package models

// Application is a pending whitelist request, keyed by the Telegram message
// id that carried the submission. It lives in memory only: a restart drops
// every pending application.
type Application struct {
	MessageID int
	Nick      string
	License   string
	Age       string
	Source    string
	Activity  string
	Reason    string

	// Telegram user id of the submitter, written into the player map on
	// approval.
	SubmitterID int64
	// Message id of the decision card, deleted together with the
	// submission once the application is decided.
	CardMessageID int
}
