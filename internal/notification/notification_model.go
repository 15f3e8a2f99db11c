package notification

import (
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/models"
)

// Type enumerates the event kinds a notification can describe.
type Type string

const (
	TypeInvitationReceived Type = "INVITATION_RECEIVED"
	TypeInvitationAccepted Type = "INVITATION_ACCEPTED"
	TypeInvitationDeclined Type = "INVITATION_DECLINED"
	TypeTeamValidated      Type = "TEAM_VALIDATED"
	TypePlayerRemoved      Type = "PLAYER_REMOVED"
	TypeMatchAnalyzed      Type = "MATCH_ANALYZED"
)

// Notification is an in-app message for one recipient. Metadata carries a
// precomputed deep link under the "link" key.
type Notification struct {
	gorm.Model
	UserID   uint           `gorm:"index;not null" json:"user_id"`
	Type     Type           `gorm:"index;not null" json:"type"`
	Title    string         `gorm:"not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	Read     bool           `gorm:"default:false;index" json:"read"`
	Metadata models.JSONMap `gorm:"type:json" json:"metadata"`
}
