package game

import (
	"errors"

	"gorm.io/gorm"
)

// GameRepository defines the interface for game catalog data.
type GameRepository interface {
	GetAll(activeOnly bool) ([]Game, error)
	GetBySlug(slug string) (*Game, error)
	Upsert(g *Game) error
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository creates a new instance of GameRepository.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) GetAll(activeOnly bool) ([]Game, error) {
	var games []Game
	q := r.db.Order("name asc")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) GetBySlug(slug string) (*Game, error) {
	var g Game
	if err := r.db.Where("slug = ?", slug).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) Upsert(g *Game) error {
	existing, err := r.GetBySlug(g.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		g.ID = existing.ID
		return r.db.Save(g).Error
	}
	return r.db.Create(g).Error
}

// Seed loads the default catalog. Safe to run on every startup.
func Seed(db *gorm.DB) error {
	repo := NewGameRepository(db)
	defaults := []Game{
		{
			Name:  "Call of Duty",
			Slug:  "cod",
			Modes: []string{"Hardpoint", "Search & Destroy", "Control"},
			Maps:  []string{"Karachi", "Invasion", "Skidrow", "Highrise", "Terminal"},
		},
		{
			Name:  "Valorant",
			Slug:  "valorant",
			Modes: []string{"Competitive"},
			Maps:  []string{"Ascent", "Bind", "Haven", "Split", "Lotus"},
		},
	}
	for i := range defaults {
		if err := repo.Upsert(&defaults[i]); err != nil {
			return err
		}
	}
	return nil
}
