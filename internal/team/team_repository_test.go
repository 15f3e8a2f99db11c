package team

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stratbook-gg/stratbook/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &Team{}))
	return db
}

func addPlayer(t *testing.T, db *gorm.DB, name string, teamID *uint) *user.User {
	t.Helper()
	u := user.User{
		Name:     name,
		Username: strings.ToLower(name),
		Email:    strings.ToLower(name) + "@stratbook.gg",
		Role:     user.RolePlayer,
		TeamID:   teamID,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func TestRecomputeValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeamRepository(db)

	tm := Team{Name: "Nightfall", CoachID: 1}
	require.NoError(t, repo.CreateTeam(&tm))

	players := make([]*user.User, 0, MaxTeamSize)
	for _, name := range []string{"Shadow", "Viper", "Omen", "Sova"} {
		players = append(players, addPlayer(t, db, name, &tm.ID))
	}

	validated, err := repo.RecomputeValidation(tm.ID)
	require.NoError(t, err)
	assert.True(t, validated)

	stored, err := repo.GetTeamByID(tm.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsValidated)

	// Dropping below the full roster clears the flag.
	require.NoError(t, repo.RemovePlayer(players[0].ID))
	validated, err = repo.RecomputeValidation(tm.ID)
	require.NoError(t, err)
	assert.False(t, validated)

	stored, err = repo.GetTeamByID(tm.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsValidated)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, players[0].ID).Error)
	assert.Nil(t, refreshed.TeamID)
}

func TestAssignPlayerSetsRole(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeamRepository(db)

	tm := Team{Name: "Nightfall", CoachID: 1}
	require.NoError(t, repo.CreateTeam(&tm))

	u := user.User{Name: "Fresh", Username: "fresh", Email: "fresh@stratbook.gg", Role: user.RoleCoach}
	require.NoError(t, db.Create(&u).Error)

	require.NoError(t, repo.AssignPlayer(u.ID, tm.ID))

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, u.ID).Error)
	require.NotNil(t, refreshed.TeamID)
	assert.Equal(t, tm.ID, *refreshed.TeamID)
	assert.Equal(t, user.RolePlayer, refreshed.Role)

	count, err := repo.CountRoster(tm.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteTeamDetachesRoster(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeamRepository(db)

	tm := Team{Name: "Nightfall", CoachID: 1}
	require.NoError(t, repo.CreateTeam(&tm))
	p := addPlayer(t, db, "Shadow", &tm.ID)

	require.NoError(t, repo.DeleteTeam(tm.ID))

	gone, err := repo.GetTeamByID(tm.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, p.ID).Error)
	assert.Nil(t, refreshed.TeamID)
}
