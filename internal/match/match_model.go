package match

import (
	"gorm.io/gorm"
)

// Match results. Empty string means the scoreboard did not allow a verdict.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// UnknownOpponentName is stored when the scoreboard shows no opponent side.
const UnknownOpponentName = "Équipe inconnue"

// DefaultMatchStatus is assumed when the analyzer reports no status.
const DefaultMatchStatus = "completed"

// Match is one analyzed game for a team. Deleting a match removes its
// player stat lines with it.
type Match struct {
	gorm.Model
	TeamID           uint   `json:"team_id" gorm:"index;not null"`
	OpponentTeamName string `json:"opponent_team_name"`
	Game             string `json:"game"`
	GameMode         string `json:"game_mode"`
	Map              string `json:"map"`
	Result           string `json:"result"`
	TeamScore        int    `json:"team_score"`
	OpponentScore    int    `json:"opponent_score"`
	Season           string `json:"season,omitempty"`
	Event            string `json:"event,omitempty"`
	MatchDuration    string `json:"match_duration,omitempty"`
	MapNumber        int    `json:"map_number,omitempty"`
	MatchStatus      string `json:"match_status" gorm:"default:'completed'"`

	ScreenshotQuality string `json:"screenshot_quality,omitempty"`
	UploadedByID      uint   `json:"uploaded_by_id"`

	PlayerStats []PlayerStats `json:"player_stats" gorm:"constraint:OnDelete:CASCADE"`
}

// PlayerStats is one scoreboard row of the uploading team. PlayerID is nil
// when the scoreboard name matched nobody on the roster; the row is kept
// anyway so no stat line is lost.
type PlayerStats struct {
	gorm.Model
	MatchID    uint    `json:"match_id" gorm:"index;not null"`
	PlayerID   *uint   `json:"player_id" gorm:"index"`
	PlayerName string  `json:"player_name"`
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	Assists    int     `json:"assists"`
	KDRatio    float64 `json:"kd_ratio"`
	Confidence float64 `json:"confidence"`

	// Mode-specific columns, null when the scoreboard has no such column.
	Damage   *int `json:"damage,omitempty"`
	HillTime *int `json:"hill_time,omitempty"`
	Captures *int `json:"captures,omitempty"`
	Defuses  *int `json:"defuses,omitempty"`
	Plants   *int `json:"plants,omitempty"`
	ZoneTime *int `json:"zone_time,omitempty"`
}
