package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"messaging-service/internal/models"
)

func TestCapabilityMatrix(t *testing.T) {
	msg := models.Message{ID: 7, SenderID: 1, ReceiverID: 2}

	sender := Actor{UserID: 1, Role: models.RoleBuyer}
	receiver := Actor{UserID: 2, Role: models.RoleArtisan}
	stranger := Actor{UserID: 3, Role: models.RoleBuyer}
	admin := Actor{UserID: 4, Role: models.RoleAdmin}

	assert.True(t, CanRead(sender, msg))
	assert.True(t, CanRead(receiver, msg))
	assert.False(t, CanRead(stranger, msg))
	assert.True(t, CanRead(admin, msg))

	assert.False(t, CanUpdateStatus(sender, msg))
	assert.True(t, CanUpdateStatus(receiver, msg))
	assert.False(t, CanUpdateStatus(stranger, msg))
	assert.True(t, CanUpdateStatus(admin, msg))

	assert.True(t, CanEditText(sender, msg))
	assert.False(t, CanEditText(receiver, msg))
	assert.False(t, CanEditText(admin, msg))

	assert.True(t, CanDelete(sender, msg))
	assert.True(t, CanDelete(receiver, msg))
	assert.False(t, CanDelete(stranger, msg))
	assert.True(t, CanDelete(admin, msg))
}
