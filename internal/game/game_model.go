package game

import (
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/models"
)

// Game is a catalog entry describing a supported title: which modes its
// scoreboards come in and which maps the analyzer may report.
type Game struct {
	gorm.Model
	Name      string             `json:"name" gorm:"uniqueIndex;not null"`
	Slug      string             `json:"slug" gorm:"uniqueIndex;not null"`
	Modes     models.StringSlice `json:"modes" gorm:"type:text"`
	Maps      models.StringSlice `json:"maps" gorm:"type:text"`
	IsActive  bool               `json:"is_active" gorm:"default:true"`
	IconURL   string             `json:"icon_url,omitempty"`
	TeamSize  int                `json:"team_size" gorm:"default:4"`
}
