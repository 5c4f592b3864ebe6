package notification

import (
	"time"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
)

// Notification is a structured message for a user, handed to an external
// delivery collaborator. Delivery is best-effort; the originating operation
// never fails because of it.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    id.UserID `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
