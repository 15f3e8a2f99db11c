package match

import (
	"errors"

	"gorm.io/gorm"
)

// MatchRepository defines the interface for match data operations.
type MatchRepository interface {
	// CreateWithStats persists a match and its stat lines atomically.
	CreateWithStats(m *Match) error
	GetByID(id uint) (*Match, error)
	ListByTeam(teamID uint, page, limit int) ([]Match, int64, error)
	// Delete removes the match and its stat lines.
	Delete(id uint) error
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new instance of MatchRepository.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateWithStats(m *Match) error {
	// gorm cascades the association inserts inside one transaction, so a
	// failed stat row rolls back the match row too.
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
}

func (r *matchRepository) GetByID(id uint) (*Match, error) {
	var m Match
	if err := r.db.Preload("PlayerStats").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) ListByTeam(teamID uint, page, limit int) ([]Match, int64, error) {
	var matches []Match
	var total int64

	if err := r.db.Model(&Match{}).Where("team_id = ?", teamID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Preload("PlayerStats").
		Where("team_id = ?", teamID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (r *matchRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&PlayerStats{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Match{}, id).Error
	})
}
