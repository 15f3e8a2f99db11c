package invitation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &team.Team{}, &Invitation{}, &notification.Notification{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	return NewService(db, mailer.NoopMailer{}, zap.NewNop(), "http://localhost:3000")
}

func createCoach(t *testing.T, db *gorm.DB, name string) *user.User {
	t.Helper()
	u := user.User{
		Name:     name,
		Username: strings.ToLower(name),
		Email:    strings.ToLower(name) + "@stratbook.gg",
		Role:     user.RoleCoach,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func createPlayer(t *testing.T, db *gorm.DB, name string, teamID *uint) *user.User {
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

func createTeam(t *testing.T, db *gorm.DB, coachID uint, name string) *team.Team {
	t.Helper()
	tm := team.Team{Name: name, CoachID: coachID}
	require.NoError(t, db.Create(&tm).Error)
	return &tm
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uint) []notification.Notification {
	t.Helper()
	var out []notification.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&out).Error)
	return out
}

func TestCreate_NewInvitation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, "Rookie@Stratbook.gg")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, inv.Status)
	assert.Equal(t, "rookie@stratbook.gg", inv.Email)
	assert.NotEmpty(t, inv.Token)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, InviteValidityDays), inv.ExpiresAt, time.Minute)
}

func TestCreate_NotifiesExistingAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	_, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	notes := notificationsFor(t, db, invitee.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeInvitationReceived, notes[0].Type)
	assert.Equal(t, "/invitations", notes[0].Metadata["link"])
}

func TestCreate_OnlyCoachOfTeam(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	other := createCoach(t, db, "Bram")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	_, err := svc.Create(other.ID, other.Role, tm.ID, "x@stratbook.gg")
	assert.ErrorIs(t, err, ErrNotTeamCoach)

	// Admins bypass ownership.
	admin := createCoach(t, db, "Root")
	require.NoError(t, db.Model(admin).Update("role", user.RoleAdmin).Error)
	_, err = svc.Create(admin.ID, user.RoleAdmin, tm.ID, "x@stratbook.gg")
	assert.NoError(t, err)
}

func TestCreate_RejectsCurrentMember(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	member := createPlayer(t, db, "Shadow", &tm.ID)

	_, err := svc.Create(coach.ID, coach.Role, tm.ID, member.Email)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestCreate_RejectsDuplicatePending(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	_, err := svc.Create(coach.ID, coach.Role, tm.ID, "rookie@stratbook.gg")
	require.NoError(t, err)
	_, err = svc.Create(coach.ID, coach.Role, tm.ID, "ROOKIE@stratbook.gg")
	assert.ErrorIs(t, err, ErrInviteAlreadyPending)
}

func TestCreate_PendingInvitesReserveSlots(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	createPlayer(t, db, "Shadow", &tm.ID)
	createPlayer(t, db, "Viper", &tm.ID)

	_, err := svc.Create(coach.ID, coach.Role, tm.ID, "third@stratbook.gg")
	require.NoError(t, err)
	_, err = svc.Create(coach.ID, coach.Role, tm.ID, "fourth@stratbook.gg")
	require.NoError(t, err)

	// 2 on the roster + 2 pending fills all 4 slots.
	_, err = svc.Create(coach.ID, coach.Role, tm.ID, "fifth@stratbook.gg")
	assert.ErrorIs(t, err, ErrTeamFull)
}

func TestCreate_ExpiredInvitesFreeTheirSlot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	createPlayer(t, db, "Shadow", &tm.ID)
	createPlayer(t, db, "Viper", &tm.ID)
	createPlayer(t, db, "Omen", &tm.ID)

	_, err := svc.Create(coach.ID, coach.Role, tm.ID, "slow@stratbook.gg")
	require.NoError(t, err)

	// A week later that invitation no longer blocks the last slot.
	svc.now = func() time.Time { return time.Now().AddDate(0, 0, InviteValidityDays+1) }
	_, err = svc.Create(coach.ID, coach.Role, tm.ID, "fast@stratbook.gg")
	assert.NoError(t, err)
}

func TestCreate_ReinviteResetsTerminalRow(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	first, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)
	_, err = svc.Respond(invitee.ID, invitee.Email, first.ID, false)
	require.NoError(t, err)

	second, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	// Same row, reset to pending with a fresh token.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, StatusPending, second.Status)
	assert.NotEqual(t, first.Token, second.Token)

	var count int64
	require.NoError(t, db.Model(&Invitation{}).Where("email = ? AND team_id = ?", invitee.Email, tm.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRespond_Accept(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	accepted, err := svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, invitee.ID).Error)
	require.NotNil(t, refreshed.TeamID)
	assert.Equal(t, tm.ID, *refreshed.TeamID)
	assert.Equal(t, user.RolePlayer, refreshed.Role)

	notes := notificationsFor(t, db, coach.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeInvitationAccepted, notes[0].Type)
}

func TestRespond_Decline(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	declined, err := svc.Respond(invitee.ID, invitee.Email, inv.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, declined.Status)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, invitee.ID).Error)
	assert.Nil(t, refreshed.TeamID)

	notes := notificationsFor(t, db, coach.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeInvitationDeclined, notes[0].Type)
}

func TestRespond_WrongEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	stranger := createPlayer(t, db, "Stranger", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, "rookie@stratbook.gg")
	require.NoError(t, err)

	_, err = svc.Respond(stranger.ID, stranger.Email, inv.ID, true)
	assert.ErrorIs(t, err, ErrNotInvitee)
}

func TestRespond_LazyExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().AddDate(0, 0, InviteValidityDays+1) }
	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	assert.ErrorIs(t, err, ErrInviteExpired)

	var stored Invitation
	require.NoError(t, db.First(&stored, inv.ID).Error)
	assert.Equal(t, StatusExpired, stored.Status)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, invitee.ID).Error)
	assert.Nil(t, refreshed.TeamID)
}

func TestRespond_AlreadyResponded(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)
	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, false)
	require.NoError(t, err)

	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	assert.ErrorIs(t, err, ErrInviteNotPending)
}

func TestRespond_TeamFilledBeforeAccept(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	// The roster fills while the invitation sits unanswered.
	for _, name := range []string{"Shadow", "Viper", "Omen", "Sova"} {
		createPlayer(t, db, name, &tm.ID)
	}

	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	assert.ErrorIs(t, err, ErrTeamFull)

	// The invitation is retired, not left pending.
	var stored Invitation
	require.NoError(t, db.First(&stored, inv.ID).Error)
	assert.Equal(t, StatusExpired, stored.Status)

	var refreshed user.User
	require.NoError(t, db.First(&refreshed, invitee.ID).Error)
	assert.Nil(t, refreshed.TeamID)
}

func TestRespond_AlreadyOnAnotherTeam(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	rival := createCoach(t, db, "Bram")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	rivalTeam := createTeam(t, db, rival.ID, "Dawnbreak")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	require.NoError(t, db.Model(invitee).Update("team_id", rivalTeam.ID).Error)

	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyOnTeam)
}

func TestRespond_FourthAcceptValidatesTeam(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	createPlayer(t, db, "Shadow", &tm.ID)
	createPlayer(t, db, "Viper", &tm.ID)
	createPlayer(t, db, "Omen", &tm.ID)
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)
	_, err = svc.Respond(invitee.ID, invitee.Email, inv.ID, true)
	require.NoError(t, err)

	var stored team.Team
	require.NoError(t, db.First(&stored, tm.ID).Error)
	assert.True(t, stored.IsValidated)

	types := []notification.Type{}
	for _, n := range notificationsFor(t, db, coach.ID) {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, notification.TypeInvitationAccepted)
	assert.Contains(t, types, notification.TypeTeamValidated)
}

func TestAcceptByToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")
	invitee := createPlayer(t, db, "Rookie", nil)

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, invitee.Email)
	require.NoError(t, err)

	accepted, err := svc.AcceptByToken(invitee.ID, invitee.Email, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)

	_, err = svc.AcceptByToken(invitee.ID, invitee.Email, "no-such-token")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestStore_RejectsDuplicateEmailTeamRow(t *testing.T) {
	db := newTestDB(t)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	expires := time.Now().AddDate(0, 0, InviteValidityDays)
	first := Invitation{
		Email:       "rookie@stratbook.gg",
		TeamID:      tm.ID,
		InvitedByID: coach.ID,
		Status:      StatusPending,
		Token:       uuid.NewString(),
		ExpiresAt:   expires,
	}
	require.NoError(t, db.Create(&first).Error)

	// The schema itself enforces one row per (email, team), so a race that
	// slips past the application-level pending check still cannot insert a
	// second row.
	second := Invitation{
		Email:       "rookie@stratbook.gg",
		TeamID:      tm.ID,
		InvitedByID: coach.ID,
		Status:      StatusPending,
		Token:       uuid.NewString(),
		ExpiresAt:   expires,
	}
	assert.Error(t, db.Create(&second).Error)

	var count int64
	require.NoError(t, db.Model(&Invitation{}).Where("email = ? AND team_id = ?", "rookie@stratbook.gg", tm.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The same email on a different team is fine.
	other := createTeam(t, db, coach.ID, "Dawnbreak")
	third := Invitation{
		Email:       "rookie@stratbook.gg",
		TeamID:      other.ID,
		InvitedByID: coach.ID,
		Status:      StatusPending,
		Token:       uuid.NewString(),
		ExpiresAt:   expires,
	}
	assert.NoError(t, db.Create(&third).Error)
}

func TestCancel_ThenReinvite(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, "rookie@stratbook.gg")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(coach.ID, coach.Role, inv.ID))

	// The cancelled row is fully gone, so it cannot collide with the
	// unique (email, team) slot of the fresh invitation.
	again, err := svc.Create(coach.ID, coach.Role, tm.ID, "rookie@stratbook.gg")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
	assert.NotEqual(t, inv.ID, again.ID)
}

func TestCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	coach := createCoach(t, db, "Aria")
	other := createCoach(t, db, "Bram")
	tm := createTeam(t, db, coach.ID, "Nightfall")

	inv, err := svc.Create(coach.ID, coach.Role, tm.ID, "rookie@stratbook.gg")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(other.ID, other.Role, inv.ID), ErrNotTeamCoach)
	require.NoError(t, svc.Cancel(coach.ID, coach.Role, inv.ID))

	stored, err := svc.repo.GetByID(inv.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
