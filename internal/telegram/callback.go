package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// CallbackKind tags a decoded button payload.
type CallbackKind int

const (
	CallbackUnknown CallbackKind = iota
	CallbackApprove
	CallbackDeny
	CallbackReviewReport
	CallbackCloseReport
	CallbackReopenReport
)

// Callback is a button payload decoded at the transport boundary. ID is the
// message id the entity is keyed by.
type Callback struct {
	Kind CallbackKind
	ID   int
}

// wire tags, kept exactly as the bot has always emitted them
const (
	tagApprove = "add"
	tagDeny    = "deny"
	tagReview  = "rep_review"
	tagClose   = "rep_close"
	tagReopen  = "rep_reopen"
)

// DecodeCallback parses a raw callback_data token. The second result is
// false for foreign or corrupt payloads.
func DecodeCallback(data string) (Callback, bool) {
	i := strings.LastIndex(data, "_")
	if i < 0 {
		return Callback{}, false
	}
	id, err := strconv.Atoi(data[i+1:])
	if err != nil {
		return Callback{}, false
	}

	var kind CallbackKind
	switch data[:i] {
	case tagApprove:
		kind = CallbackApprove
	case tagDeny:
		kind = CallbackDeny
	case tagReview:
		kind = CallbackReviewReport
	case tagClose:
		kind = CallbackCloseReport
	case tagReopen:
		kind = CallbackReopenReport
	default:
		return Callback{}, false
	}
	return Callback{Kind: kind, ID: id}, true
}

// Encode renders the wire token for a callback.
func (c Callback) Encode() string {
	var tag string
	switch c.Kind {
	case CallbackApprove:
		tag = tagApprove
	case CallbackDeny:
		tag = tagDeny
	case CallbackReviewReport:
		tag = tagReview
	case CallbackCloseReport:
		tag = tagClose
	case CallbackReopenReport:
		tag = tagReopen
	}
	return fmt.Sprintf("%s_%d", tag, c.ID)
}
