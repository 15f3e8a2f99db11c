package invitation

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// InvitationRepository defines the interface for invitation data operations.
type InvitationRepository interface {
	Create(inv *Invitation) error
	Update(inv *Invitation) error
	Delete(id uint) error
	GetByID(id uint) (*Invitation, error)
	GetByToken(token string) (*Invitation, error)
	GetByEmailAndTeam(email string, teamID uint) (*Invitation, error)
	ListByTeam(teamID uint) ([]Invitation, error)
	ListByEmail(email string) ([]Invitation, error)

	// CountPending counts pending, unexpired invitations for the team. Rows
	// past their expiry no longer reserve a roster slot even before the lazy
	// status flip happens.
	CountPending(teamID uint, now time.Time) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new instance of InvitationRepository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(inv *Invitation) error {
	inv.Email = normalizeEmail(inv.Email)
	return r.db.Create(inv).Error
}

func (r *invitationRepository) Update(inv *Invitation) error {
	return r.db.Save(inv).Error
}

func (r *invitationRepository) Delete(id uint) error {
	// Hard delete. A soft-deleted row would keep occupying the unique
	// (email, team) slot and block a later re-invite.
	return r.db.Unscoped().Delete(&Invitation{}, id).Error
}

func (r *invitationRepository) GetByID(id uint) (*Invitation, error) {
	var inv Invitation
	if err := r.db.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) GetByToken(token string) (*Invitation, error) {
	var inv Invitation
	if err := r.db.Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) GetByEmailAndTeam(email string, teamID uint) (*Invitation, error) {
	var inv Invitation
	err := r.db.Where("email = ? AND team_id = ?", normalizeEmail(email), teamID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) ListByTeam(teamID uint) ([]Invitation, error) {
	var invs []Invitation
	if err := r.db.Where("team_id = ?", teamID).Order("created_at desc").Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invitationRepository) ListByEmail(email string) ([]Invitation, error) {
	var invs []Invitation
	err := r.db.Where("email = ?", normalizeEmail(email)).Order("created_at desc").Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invitationRepository) CountPending(teamID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&Invitation{}).
		Where("team_id = ? AND status = ? AND expires_at > ?", teamID, StatusPending, now).
		Count(&count).Error
	return count, err
}


func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
