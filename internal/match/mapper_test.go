package match

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &team.Team{}, &Match{}, &PlayerStats{}, &notification.Notification{},
	))
	return db
}

func seedTeam(t *testing.T, db *gorm.DB, playerNames ...string) (*team.Team, *user.User) {
	t.Helper()
	coach := user.User{Name: "Coach", Username: "coach", Email: "coach@stratbook.gg", Role: user.RoleCoach}
	require.NoError(t, db.Create(&coach).Error)
	tm := team.Team{Name: "Nightfall", CoachID: coach.ID}
	require.NoError(t, db.Create(&tm).Error)
	for _, name := range playerNames {
		p := user.User{
			Name:     name,
			Username: strings.ToLower(name),
			Email:    strings.ToLower(name) + "@stratbook.gg",
			Role:     user.RolePlayer,
			TeamID:   &tm.ID,
		}
		require.NoError(t, db.Create(&p).Error)
	}
	return &tm, &coach
}

func boolPtr(b bool) *bool { return &b }

func TestSaveFromAnalysis_FullScoreboard(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db, "Shadow", "Viper")
	mapper := NewMapper(db, zap.NewNop())

	analysis := &AnalysisResult{
		Teams: []AnalyzedTeam{
			{
				Name:  "Nightfall",
				Score: 250,
				Players: []AnalyzedPlayer{
					{Name: "sHaDoW", Kills: 20, Deaths: 10, Assists: 4, Confidence: 0.97},
					{Name: "Ghost", Kills: 5, Deaths: 8, Confidence: 0.71},
				},
			},
			{
				Name:  "Dawnbreak",
				Score: 200,
				Players: []AnalyzedPlayer{
					{Name: "Enemy1", Kills: 12, Deaths: 14},
				},
			},
		},
		Metadata: AnalysisMetadata{
			Game:     "Call of Duty",
			GameMode: "Hardpoint",
			Map:      "Karachi",
		},
	}

	saved, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	require.NoError(t, err)

	assert.Equal(t, "Dawnbreak", saved.OpponentTeamName)
	assert.Equal(t, 250, saved.TeamScore)
	assert.Equal(t, 200, saved.OpponentScore)
	assert.Equal(t, ResultWin, saved.Result)
	assert.Equal(t, DefaultMatchStatus, saved.MatchStatus)

	// Only the uploading team's rows are persisted.
	require.Len(t, saved.PlayerStats, 2)

	// Scoreboard names match the roster case-insensitively.
	matched := saved.PlayerStats[0]
	require.NotNil(t, matched.PlayerID)
	assert.InEpsilon(t, 2.0, matched.KDRatio, 1e-9)

	// Unknown names keep their stat line without a player link.
	unmatched := saved.PlayerStats[1]
	assert.Nil(t, unmatched.PlayerID)
	assert.Equal(t, "Ghost", unmatched.PlayerName)

	notes := 0
	var stored []notification.Notification
	require.NoError(t, db.Where("user_id = ?", coach.ID).Find(&stored).Error)
	for _, n := range stored {
		if n.Type == notification.TypeMatchAnalyzed {
			notes++
		}
	}
	assert.Equal(t, 1, notes)
}

func TestSaveFromAnalysis_SkipsInvisibleTeams(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db, "Shadow")
	mapper := NewMapper(db, zap.NewNop())

	analysis := &AnalysisResult{
		Teams: []AnalyzedTeam{
			{Name: "Cropped", Score: 0, Visible: boolPtr(false)},
			{Name: "Nightfall", Score: 13, Players: []AnalyzedPlayer{{Name: "Shadow", Kills: 18, Deaths: 9}}},
		},
	}

	saved, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	require.NoError(t, err)

	// The first visible entry is ours; the cropped one becomes the opponent.
	assert.Equal(t, 13, saved.TeamScore)
	assert.Equal(t, "Cropped", saved.OpponentTeamName)
	require.Len(t, saved.PlayerStats, 1)
}

func TestSaveFromAnalysis_NoVisibleTeam(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db)
	mapper := NewMapper(db, zap.NewNop())

	analysis := &AnalysisResult{
		Teams: []AnalyzedTeam{
			{Name: "A", Visible: boolPtr(false)},
			{Name: "B", Visible: boolPtr(false)},
		},
	}
	_, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	assert.ErrorIs(t, err, ErrNoVisibleTeam)

	_, err = mapper.SaveFromAnalysis(tm.ID, coach.ID, &AnalysisResult{})
	assert.ErrorIs(t, err, ErrNoVisibleTeam)

	var count int64
	require.NoError(t, db.Model(&Match{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSaveFromAnalysis_SingleTeamScoreboard(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db, "Shadow")
	mapper := NewMapper(db, zap.NewNop())

	analysis := &AnalysisResult{
		Teams: []AnalyzedTeam{
			{Name: "Nightfall", Score: 3, Players: []AnalyzedPlayer{{Name: "Shadow", Kills: 30, Deaths: 2}}},
		},
	}

	saved, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	require.NoError(t, err)

	assert.Equal(t, UnknownOpponentName, saved.OpponentTeamName)
	assert.Equal(t, 0, saved.OpponentScore)
	assert.Equal(t, ResultWin, saved.Result)
}

func TestSaveFromAnalysis_MatchStatusFromMetadata(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db)
	mapper := NewMapper(db, zap.NewNop())

	analysis := &AnalysisResult{
		Teams:    []AnalyzedTeam{{Name: "Nightfall", Score: 1}, {Name: "Dawnbreak", Score: 1}},
		Metadata: AnalysisMetadata{MatchStatus: "in_progress"},
	}
	saved, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", saved.MatchStatus)
	assert.Equal(t, ResultDraw, saved.Result)
}

func TestDeriveResult(t *testing.T) {
	tests := []struct {
		name          string
		ours          AnalyzedTeam
		opponentScore int
		want          string
	}{
		{"winner flag wins regardless of scores", AnalyzedTeam{Score: 100, Winner: boolPtr(true)}, 250, ResultWin},
		{"winner flag false is a loss", AnalyzedTeam{Score: 250, Winner: boolPtr(false)}, 100, ResultLoss},
		{"higher score wins", AnalyzedTeam{Score: 13}, 7, ResultWin},
		{"lower score loses", AnalyzedTeam{Score: 7}, 13, ResultLoss},
		{"equal scores draw", AnalyzedTeam{Score: 6}, 6, ResultDraw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveResult(&tt.ours, tt.opponentScore))
		})
	}
}

func TestComputeKDRatio(t *testing.T) {
	assert.InEpsilon(t, 2.0, ComputeKDRatio(20, 10), 1e-9)
	assert.InEpsilon(t, 15.0, ComputeKDRatio(15, 0), 1e-9)
	assert.Zero(t, ComputeKDRatio(0, 0))
	assert.Zero(t, ComputeKDRatio(0, 5))
}

func TestEffectiveKDRatio_PrefersAnalyzerValue(t *testing.T) {
	ratio := 1.87
	p := AnalyzedPlayer{Kills: 20, Deaths: 10, KDRatio: &ratio}
	assert.InEpsilon(t, 1.87, p.EffectiveKDRatio(), 1e-9)

	p.KDRatio = nil
	assert.InEpsilon(t, 2.0, p.EffectiveKDRatio(), 1e-9)
}

func TestDelete_RemovesPlayerStats(t *testing.T) {
	db := newTestDB(t)
	tm, coach := seedTeam(t, db, "Shadow")
	mapper := NewMapper(db, zap.NewNop())
	repo := NewMatchRepository(db)

	analysis := &AnalysisResult{
		Teams: []AnalyzedTeam{
			{Name: "Nightfall", Score: 2, Players: []AnalyzedPlayer{{Name: "Shadow", Kills: 9, Deaths: 9}}},
			{Name: "Dawnbreak", Score: 1},
		},
	}
	saved, err := mapper.SaveFromAnalysis(tm.ID, coach.ID, analysis)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(saved.ID))

	var stats int64
	require.NoError(t, db.Model(&PlayerStats{}).Where("match_id = ?", saved.ID).Count(&stats).Error)
	assert.EqualValues(t, 0, stats)

	gone, err := repo.GetByID(saved.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
