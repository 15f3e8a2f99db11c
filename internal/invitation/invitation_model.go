package invitation

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Invitation statuses. Pending is the only non-terminal state.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusExpired  = "expired"
)

// InviteValidityDays is how long an invitation stays actionable.
const InviteValidityDays = 7

// Lifecycle errors surfaced by the service. Controllers map these to HTTP
// statuses.
var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrNotTeamCoach         = errors.New("only the team's coach can manage invitations")
	ErrAlreadyMember        = errors.New("this player is already on the team")
	ErrTeamFull             = errors.New("team is full")
	ErrInviteAlreadyPending = errors.New("an invitation for this email is already pending")
	ErrInviteNotFound       = errors.New("invitation not found")
	ErrNotInvitee           = errors.New("this invitation is addressed to a different email")
	ErrInviteNotPending     = errors.New("invitation has already been responded to")
	ErrInviteExpired        = errors.New("invitation has expired")
	ErrAlreadyOnTeam        = errors.New("you already belong to another team")
)

// Invitation is keyed by (email, team) so a coach can re-invite the same
// address after a decline or expiry. Re-inviting resets the row to pending
// with a fresh token and expiry instead of creating a duplicate.
type Invitation struct {
	gorm.Model
	Email       string    `json:"email" gorm:"not null;uniqueIndex:idx_invitations_email_team"`
	TeamID      uint      `json:"team_id" gorm:"not null;uniqueIndex:idx_invitations_email_team"`
	InvitedByID uint      `json:"invited_by_id" gorm:"not null"`
	Status      string    `json:"status" gorm:"not null;default:'pending';index"`
	Token       string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"not null"`
}

// Pending reports whether the invitation is still actionable at t.
func (i *Invitation) Pending(t time.Time) bool {
	return i.Status == StatusPending && !t.After(i.ExpiresAt)
}
