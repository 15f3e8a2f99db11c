// team/model.go
package team

import (
	"gorm.io/gorm"
)

// MaxTeamSize is the fixed roster capacity. A team is validated exactly when
// its roster reaches this size.
const MaxTeamSize = 4

// Team is a coached esports roster. Membership lives on the users table
// (users.team_id); the team row only carries ownership and validation state.
type Team struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null;index"`
	Game        string `json:"game,omitempty"`
	CoachID     uint   `json:"coach_id" gorm:"index;not null"`
	IsValidated bool   `json:"is_validated" gorm:"default:false"`
}
