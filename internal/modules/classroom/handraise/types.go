package handraise

import "errors"

var (
	errAlreadyRaised = errors.New("hand already raised")
	errNoRaisedHand  = errors.New("no raised hand to cancel")
)

type raiseResponse struct {
	EntryID  uint   `json:"entry_id"`
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}
