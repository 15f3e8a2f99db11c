package notification

import (
	"fmt"

	"github.com/stratbook-gg/stratbook/internal/models"
)

// LinkFor maps a notification type and its metadata to an application-relative
// URL. Pure function; unknown types fall back to the dashboard.
func LinkFor(t Type, metadata models.JSONMap) string {
	switch t {
	case TypeInvitationReceived:
		return "/invitations"
	case TypeInvitationAccepted, TypeInvitationDeclined, TypeTeamValidated, TypePlayerRemoved:
		if id, ok := metadataID(metadata, "team_id"); ok {
			return fmt.Sprintf("/teams/%d", id)
		}
		return "/teams"
	case TypeMatchAnalyzed:
		if id, ok := metadataID(metadata, "match_id"); ok {
			return fmt.Sprintf("/matches/%d", id)
		}
		return "/matches"
	default:
		return "/dashboard"
	}
}

func metadataID(metadata models.JSONMap, key string) (uint, bool) {
	if metadata == nil {
		return 0, false
	}
	switch v := metadata[key].(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case float64: // metadata round-tripped through JSON
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
