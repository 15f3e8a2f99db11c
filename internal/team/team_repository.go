package team

import (
	"errors"

	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/user"
)

// TeamRepository defines the interface for team and roster data operations.
type TeamRepository interface {
	CreateTeam(team *Team) error
	GetTeamByID(id uint) (*Team, error)
	GetTeamByName(name string) (*Team, error)
	GetTeamsByCoachID(coachID uint) ([]Team, error)
	UpdateTeam(team *Team) error
	DeleteTeam(id uint) error

	// Roster operations. Membership is users.team_id.
	GetUserByID(id uint) (*user.User, error)
	GetRoster(teamID uint) ([]user.User, error)
	CountRoster(teamID uint) (int64, error)
	AssignPlayer(userID, teamID uint) error
	RemovePlayer(userID uint) error

	// RecomputeValidation re-derives is_validated from the roster size and
	// persists it. Returns the new validation state. Must be called after
	// every roster mutation.
	RecomputeValidation(teamID uint) (bool, error)

	WithTransaction(txFunc func(TeamRepository) error) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateTeam(team *Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var team Team
	if err := r.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByName(name string) (*Team, error) {
	var team Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamsByCoachID(coachID uint) ([]Team, error) {
	var teams []Team
	if err := r.db.Where("coach_id = ?", coachID).Order("created_at desc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) UpdateTeam(team *Team) error {
	return r.db.Save(team).Error
}

func (r *teamRepository) DeleteTeam(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Detach the roster before removing the team row.
		if err := tx.Model(&user.User{}).Where("team_id = ?", id).Update("team_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&Team{}, id).Error
	})
}

func (r *teamRepository) GetUserByID(id uint) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *teamRepository) GetRoster(teamID uint) ([]user.User, error) {
	var roster []user.User
	if err := r.db.Where("team_id = ?", teamID).Order("created_at asc").Find(&roster).Error; err != nil {
		return nil, err
	}
	return roster, nil
}

func (r *teamRepository) CountRoster(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *teamRepository) AssignPlayer(userID, teamID uint) error {
	return r.db.Model(&user.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"team_id": teamID, "role": user.RolePlayer}).Error
}

func (r *teamRepository) RemovePlayer(userID uint) error {
	return r.db.Model(&user.User{}).Where("id = ?", userID).Update("team_id", nil).Error
}

func (r *teamRepository) RecomputeValidation(teamID uint) (bool, error) {
	count, err := r.CountRoster(teamID)
	if err != nil {
		return false, err
	}
	validated := count == MaxTeamSize
	if err := r.db.Model(&Team{}).Where("id = ?", teamID).Update("is_validated", validated).Error; err != nil {
		return false, err
	}
	return validated, nil
}

func (r *teamRepository) WithTransaction(txFunc func(TeamRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&teamRepository{db: tx})
	})
}
