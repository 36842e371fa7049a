package authz

import "messaging-service/internal/models"

// Actor is the request-scoped identity resolved at the HTTP boundary.
type Actor struct {
	UserID int
	Role   string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanRead: a message is readable by either participant or an admin.
func CanRead(actor Actor, msg models.Message) bool {
	return actor.IsAdmin() || msg.SenderID == actor.UserID || msg.ReceiverID == actor.UserID
}

// CanUpdateStatus: only the receiver (or an admin) moves a message through
// its delivery states.
func CanUpdateStatus(actor Actor, msg models.Message) bool {
	return actor.IsAdmin() || msg.ReceiverID == actor.UserID
}

// CanEditText: only the original sender may change message content.
func CanEditText(actor Actor, msg models.Message) bool {
	return msg.SenderID == actor.UserID
}

// CanDelete: either participant or an admin may soft-delete.
func CanDelete(actor Actor, msg models.Message) bool {
	return CanRead(actor, msg)
}
