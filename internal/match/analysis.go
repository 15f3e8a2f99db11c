package match

// AnalysisResult is the JSON document produced by the scoreboard vision
// analyzer. The mapper consumes it as-is; it never calls the analyzer.
type AnalysisResult struct {
	Teams    []AnalyzedTeam   `json:"teams" binding:"required"`
	Metadata AnalysisMetadata `json:"metadata"`
}

// AnalyzedTeam is one side of the scoreboard. Visible is nil when the
// analyzer did not report visibility; only an explicit false hides a team.
type AnalyzedTeam struct {
	Name    string           `json:"name"`
	Score   int              `json:"score"`
	Winner  *bool            `json:"winner,omitempty"`
	Visible *bool            `json:"visible,omitempty"`
	Players []AnalyzedPlayer `json:"players"`
}

// AnalyzedPlayer is one scoreboard row. Mode-specific columns are pointers
// so absent columns stay distinguishable from zero values.
type AnalyzedPlayer struct {
	Name       string   `json:"name"`
	Kills      int      `json:"kills"`
	Deaths     int      `json:"deaths"`
	Assists    int      `json:"assists"`
	KDRatio    *float64 `json:"kd_ratio,omitempty"`
	Confidence float64  `json:"confidence"`
	Damage     *int     `json:"damage,omitempty"`
	HillTime   *int     `json:"hill_time,omitempty"`
	Captures   *int     `json:"captures,omitempty"`
	Defuses    *int     `json:"defuses,omitempty"`
	Plants     *int     `json:"plants,omitempty"`
	ZoneTime   *int     `json:"zone_time,omitempty"`
}

// AnalysisMetadata carries scoreboard context read from the screenshot.
type AnalysisMetadata struct {
	Game              string `json:"game"`
	GameMode          string `json:"game_mode"`
	Map               string `json:"map"`
	MatchDuration     string `json:"match_duration"`
	ScreenshotQuality string `json:"screenshot_quality"`
	Season            string `json:"season"`
	Event             string `json:"event"`
	MapNumber         int    `json:"map_number"`
	MatchStatus       string `json:"match_status"`
}

// IsVisible reports whether the team should be considered present on the
// scoreboard. Only an explicit visible=false excludes it.
func (t *AnalyzedTeam) IsVisible() bool {
	return t.Visible == nil || *t.Visible
}

// EffectiveKDRatio returns the analyzer's ratio when present, otherwise
// computes kills/deaths with the zero-death conventions: kills when deaths
// is 0, and 0 when both are 0.
func (p *AnalyzedPlayer) EffectiveKDRatio() float64 {
	if p.KDRatio != nil {
		return *p.KDRatio
	}
	return ComputeKDRatio(p.Kills, p.Deaths)
}

// ComputeKDRatio derives a kill/death ratio.
func ComputeKDRatio(kills, deaths int) float64 {
	if deaths == 0 {
		if kills == 0 {
			return 0
		}
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}
