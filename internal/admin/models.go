package admin

import (
	"time"

	id "heirloom/pkg/domain"
)

// Record is the single administrator registration. There is exactly one for
// the whole deployment, set once and never reassigned.
type Record struct {
	UserID        id.UserID
	InitializedAt time.Time
}
