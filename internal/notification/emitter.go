package notification

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/models"
)

// Emitter creates notification rows as a side effect of other operations.
// Emission is best-effort: failures are logged and never propagated, so a
// broken notifications table cannot fail an invitation accept or a match save.
type Emitter struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEmitter(db *gorm.DB, log *zap.Logger) *Emitter {
	return &Emitter{db: db, log: log}
}

// Emit stores a notification for userID. The deep link is derived from the
// type and metadata and stored under metadata["link"].
func (e *Emitter) Emit(userID uint, t Type, title, message string, metadata models.JSONMap) {
	if metadata == nil {
		metadata = models.JSONMap{}
	}
	metadata["link"] = LinkFor(t, metadata)

	n := Notification{
		UserID:   userID,
		Type:     t,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}
	if err := e.db.Create(&n).Error; err != nil {
		e.log.Warn("notification create failed",
			zap.Uint("user_id", userID),
			zap.String("type", string(t)),
			zap.Error(err),
		)
	}
}
