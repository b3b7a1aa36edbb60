package invite

import (
	"errors"

	"github.com/classhall/core/internal/models"
)

type CreateInviteDTO struct {
	Role     models.UserRole `json:"role"`
	Count    int             `json:"count"     binding:"omitempty,min=1,max=50"`
	TTLHours int             `json:"ttl_hours" binding:"omitempty,min=1,max=8760"`
}

var errUnknownRole = errors.New("unknown role")

// codeBytes of randomness per invite code, hex-encoded on the wire.
const codeBytes = 8
