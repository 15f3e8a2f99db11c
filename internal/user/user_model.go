package user

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleCoach  = "coach"
	RolePlayer = "player"
)

// User is an account on the platform. A coach owns teams; a player belongs
// to at most one team (TeamID nil when unassigned).
type User struct {
	gorm.Model
	Name                string     `json:"name"`
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `json:"-"` // bcrypt hash; empty means no password credential yet
	Role                string     `gorm:"index;not null;default:'player'" json:"role"`
	TeamID              *uint      `gorm:"index" json:"team_id,omitempty"`
	OnboardingCompleted bool       `gorm:"default:false" json:"onboarding_completed"`
	EmailVerified       bool       `gorm:"default:false" json:"email_verified"`
	VerifyToken         string     `gorm:"index" json:"-"`
	VerifyExpires       *time.Time `json:"-"`
	LastActive          time.Time  `json:"last_active"`
}

// RefreshToken is a stored long-lived session credential.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}

// HasPassword reports whether the account carries a password credential.
// Invitees created through an invitation accept don't have one until they
// finish onboarding.
func (u *User) HasPassword() bool {
	return u.Password != ""
}
