package match

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
)

// ErrNoVisibleTeam means the analyzer saw no usable team side on the
// scoreboard, so no match can be derived from it.
var ErrNoVisibleTeam = errors.New("no visible team found in the analysis")

// Mapper turns an AnalysisResult into persisted Match and PlayerStats rows.
// It never talks to the analyzer; it only consumes its output.
type Mapper struct {
	repo     MatchRepository
	teamRepo team.TeamRepository
	emitter  *notification.Emitter
	log      *zap.Logger
}

func NewMapper(db *gorm.DB, log *zap.Logger) *Mapper {
	return &Mapper{
		repo:     NewMatchRepository(db),
		teamRepo: team.NewTeamRepository(db),
		emitter:  notification.NewEmitter(db, log),
		log:      log,
	}
}

// SaveFromAnalysis maps the analysis onto teamID's perspective and stores the
// match with its stat lines in one transaction.
//
// The uploading team is the first scoreboard entry not explicitly marked
// invisible. The opponent is any other entry; when the scoreboard shows only
// one side the opponent is recorded as UnknownOpponentName with score 0.
// Only the uploading team's stat lines are persisted; rows whose names match
// nobody on the roster are kept with a nil PlayerID.
func (m *Mapper) SaveFromAnalysis(teamID, uploadedByID uint, result *AnalysisResult) (*Match, error) {
	if result == nil || len(result.Teams) == 0 {
		return nil, ErrNoVisibleTeam
	}

	ourIdx := -1
	for i := range result.Teams {
		if result.Teams[i].IsVisible() {
			ourIdx = i
			break
		}
	}
	if ourIdx == -1 {
		return nil, ErrNoVisibleTeam
	}
	ours := &result.Teams[ourIdx]

	var opponent *AnalyzedTeam
	for i := range result.Teams {
		if i != ourIdx {
			opponent = &result.Teams[i]
			break
		}
	}

	opponentName := UnknownOpponentName
	opponentScore := 0
	if opponent != nil {
		if opponent.Name != "" {
			opponentName = opponent.Name
		}
		opponentScore = opponent.Score
	}

	status := result.Metadata.MatchStatus
	if status == "" {
		status = DefaultMatchStatus
	}

	match := &Match{
		TeamID:            teamID,
		OpponentTeamName:  opponentName,
		Game:              result.Metadata.Game,
		GameMode:          result.Metadata.GameMode,
		Map:               result.Metadata.Map,
		Result:            deriveResult(ours, opponentScore),
		TeamScore:         ours.Score,
		OpponentScore:     opponentScore,
		Season:            result.Metadata.Season,
		Event:             result.Metadata.Event,
		MatchDuration:     result.Metadata.MatchDuration,
		MapNumber:         result.Metadata.MapNumber,
		MatchStatus:       status,
		ScreenshotQuality: result.Metadata.ScreenshotQuality,
		UploadedByID:      uploadedByID,
	}

	rosterIDs, err := m.rosterByName(teamID)
	if err != nil {
		return nil, err
	}
	for i := range ours.Players {
		p := &ours.Players[i]
		stats := PlayerStats{
			PlayerName: p.Name,
			Kills:      p.Kills,
			Deaths:     p.Deaths,
			Assists:    p.Assists,
			KDRatio:    p.EffectiveKDRatio(),
			Confidence: p.Confidence,
			Damage:     p.Damage,
			HillTime:   p.HillTime,
			Captures:   p.Captures,
			Defuses:    p.Defuses,
			Plants:     p.Plants,
			ZoneTime:   p.ZoneTime,
		}
		if id, ok := rosterIDs[strings.ToLower(strings.TrimSpace(p.Name))]; ok {
			playerID := id
			stats.PlayerID = &playerID
		}
		match.PlayerStats = append(match.PlayerStats, stats)
	}

	if err := m.repo.CreateWithStats(match); err != nil {
		return nil, err
	}

	m.emitter.Emit(uploadedByID, notification.TypeMatchAnalyzed,
		"Match analyzed",
		fmt.Sprintf("Scoreboard against %s has been analyzed and saved.", match.OpponentTeamName),
		map[string]interface{}{"match_id": match.ID, "team_id": teamID},
	)

	return match, nil
}

// deriveResult prefers the analyzer's explicit winner flag; without one the
// verdict falls back to the score comparison.
func deriveResult(ours *AnalyzedTeam, opponentScore int) string {
	if ours.Winner != nil {
		if *ours.Winner {
			return ResultWin
		}
		return ResultLoss
	}
	switch {
	case ours.Score > opponentScore:
		return ResultWin
	case ours.Score < opponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// rosterByName indexes the team roster by lowercased display names and
// usernames for scoreboard matching.
func (m *Mapper) rosterByName(teamID uint) (map[string]uint, error) {
	roster, err := m.teamRepo.GetRoster(teamID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]uint, len(roster)*2)
	for _, u := range roster {
		if name := strings.ToLower(strings.TrimSpace(u.Name)); name != "" {
			index[name] = u.ID
		}
		if username := strings.ToLower(strings.TrimSpace(u.Username)); username != "" {
			index[username] = u.ID
		}
	}
	return index, nil
}
