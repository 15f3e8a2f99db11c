package invitation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
)

// Service owns the invitation lifecycle: creation with capacity enforcement,
// lazy expiry, accept/decline, and the side effects (email, notifications)
// each transition triggers. Accepting mutates the roster, the invitation and
// the team's validation flag in one database transaction.
type Service struct {
	db          *gorm.DB
	repo        InvitationRepository
	teamRepo    team.TeamRepository
	emitter     *notification.Emitter
	mail        mailer.Sender
	log         *zap.Logger
	frontendURL string
	now         func() time.Time
}

func NewService(db *gorm.DB, mail mailer.Sender, log *zap.Logger, frontendURL string) *Service {
	return &Service{
		db:          db,
		repo:        NewInvitationRepository(db),
		teamRepo:    team.NewTeamRepository(db),
		emitter:     notification.NewEmitter(db, log),
		mail:        mail,
		log:         log,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// Create invites an email address to the team. If a terminal or expired
// invitation already exists for (email, team) it is reset to pending with a
// fresh token and expiry. A pending, unexpired one is rejected.
func (s *Service) Create(inviterID uint, inviterRole string, teamID uint, email string) (*Invitation, error) {
	email = normalizeEmail(email)
	now := s.now()

	t, err := s.teamRepo.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTeamNotFound
	}
	if inviterRole != user.RoleAdmin && t.CoachID != inviterID {
		return nil, ErrNotTeamCoach
	}

	invitee, err := s.userByEmail(email)
	if err != nil {
		return nil, err
	}
	if invitee != nil && invitee.TeamID != nil && *invitee.TeamID == teamID {
		return nil, ErrAlreadyMember
	}

	existing, err := s.repo.GetByEmailAndTeam(email, teamID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Pending(now) {
		return nil, ErrInviteAlreadyPending
	}

	// Pending invitations reserve roster slots so a coach cannot over-invite.
	rosterCount, err := s.teamRepo.CountRoster(teamID)
	if err != nil {
		return nil, err
	}
	pendingCount, err := s.repo.CountPending(teamID, now)
	if err != nil {
		return nil, err
	}
	if rosterCount+pendingCount >= team.MaxTeamSize {
		return nil, ErrTeamFull
	}

	var inv *Invitation
	if existing != nil {
		existing.Status = StatusPending
		existing.Token = uuid.NewString()
		existing.ExpiresAt = now.AddDate(0, 0, InviteValidityDays)
		existing.InvitedByID = inviterID
		if err := s.repo.Update(existing); err != nil {
			return nil, err
		}
		inv = existing
	} else {
		inv = &Invitation{
			Email:       email,
			TeamID:      teamID,
			InvitedByID: inviterID,
			Status:      StatusPending,
			Token:       uuid.NewString(),
			ExpiresAt:   now.AddDate(0, 0, InviteValidityDays),
		}
		if err := s.repo.Create(inv); err != nil {
			return nil, err
		}
	}

	mailer.SendAsync(s.mail, s.log, email, mailer.TemplateTeamInvitation, map[string]string{
		"team_name":  t.Name,
		"invite_url": fmt.Sprintf("%s/invitations?token=%s", s.frontendURL, inv.Token),
	})
	if invitee != nil {
		s.emitter.Emit(invitee.ID, notification.TypeInvitationReceived,
			"Team invitation",
			fmt.Sprintf("You have been invited to join %s.", t.Name),
			map[string]interface{}{"team_id": t.ID, "invitation_id": inv.ID},
		)
	}

	return inv, nil
}

// Respond handles an accept or decline by the invitee. The caller's session
// email must match the invitation. Expiry is checked lazily here: a stale
// pending row is flipped to expired and the response rejected.
func (s *Service) Respond(userID uint, userEmail string, invitationID uint, accept bool) (*Invitation, error) {
	inv, err := s.repo.GetByID(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteNotFound
	}
	if !strings.EqualFold(inv.Email, userEmail) {
		return nil, ErrNotInvitee
	}
	if inv.Status != StatusPending {
		return nil, ErrInviteNotPending
	}

	now := s.now()
	if now.After(inv.ExpiresAt) {
		inv.Status = StatusExpired
		if err := s.repo.Update(inv); err != nil {
			return nil, err
		}
		return nil, ErrInviteExpired
	}

	if !accept {
		return s.decline(inv)
	}
	return s.accept(userID, inv)
}

// AcceptByToken resolves an invitation by its emailed token and accepts it for
// the given user. Used when a player registers straight from an invite link.
func (s *Service) AcceptByToken(userID uint, userEmail, token string) (*Invitation, error) {
	inv, err := s.repo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteNotFound
	}
	return s.Respond(userID, userEmail, inv.ID, true)
}

func (s *Service) decline(inv *Invitation) (*Invitation, error) {
	inv.Status = StatusDeclined
	if err := s.repo.Update(inv); err != nil {
		return nil, err
	}

	if t, err := s.teamRepo.GetTeamByID(inv.TeamID); err == nil && t != nil {
		s.emitter.Emit(t.CoachID, notification.TypeInvitationDeclined,
			"Invitation declined",
			fmt.Sprintf("%s declined the invitation to join %s.", inv.Email, t.Name),
			map[string]interface{}{"team_id": t.ID, "invitation_id": inv.ID},
		)
	}
	return inv, nil
}

func (s *Service) accept(userID uint, inv *Invitation) (*Invitation, error) {
	var (
		acceptedTeam *team.Team
		validated    bool
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		invRepo := NewInvitationRepository(tx)
		teamRepo := team.NewTeamRepository(tx)

		t, err := teamRepo.GetTeamByID(inv.TeamID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTeamNotFound
		}
		acceptedTeam = t

		var u user.User
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		if u.TeamID != nil {
			if *u.TeamID == t.ID {
				return ErrAlreadyMember
			}
			return ErrAlreadyOnTeam
		}

		// The roster may have filled between invite and accept. The slot this
		// invitation reserved is gone, so retire the invitation with it.
		rosterCount, err := teamRepo.CountRoster(t.ID)
		if err != nil {
			return err
		}
		if rosterCount >= team.MaxTeamSize {
			inv.Status = StatusExpired
			if err := invRepo.Update(inv); err != nil {
				return err
			}
			return ErrTeamFull
		}

		if err := teamRepo.AssignPlayer(userID, t.ID); err != nil {
			return err
		}
		// Accounts that already hold a password credential have nothing left
		// to onboard.
		if u.HasPassword() && !u.OnboardingCompleted {
			if err := tx.Model(&u).Update("onboarding_completed", true).Error; err != nil {
				return err
			}
		}
		inv.Status = StatusAccepted
		if err := invRepo.Update(inv); err != nil {
			return err
		}
		validated, err = teamRepo.RecomputeValidation(t.ID)
		return err
	})
	if err != nil {
		// The expiry flip above must survive the rollback of the enclosing
		// transaction.
		if errors.Is(err, ErrTeamFull) && inv.Status == StatusExpired {
			if uerr := s.repo.Update(inv); uerr != nil {
				s.log.Warn("failed to expire invitation after full-team accept",
					zap.Uint("invitation_id", inv.ID), zap.Error(uerr))
			}
		}
		return nil, err
	}

	s.emitter.Emit(acceptedTeam.CoachID, notification.TypeInvitationAccepted,
		"Invitation accepted",
		fmt.Sprintf("%s joined %s.", inv.Email, acceptedTeam.Name),
		map[string]interface{}{"team_id": acceptedTeam.ID, "invitation_id": inv.ID},
	)
	if validated {
		s.emitter.Emit(acceptedTeam.CoachID, notification.TypeTeamValidated,
			"Team complete",
			fmt.Sprintf("%s has a full roster and is now validated.", acceptedTeam.Name),
			map[string]interface{}{"team_id": acceptedTeam.ID},
		)
	}

	return inv, nil
}

// Cancel removes a pending invitation. Owning coach or admin only.
func (s *Service) Cancel(requesterID uint, requesterRole string, invitationID uint) error {
	inv, err := s.repo.GetByID(invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInviteNotFound
	}

	t, err := s.teamRepo.GetTeamByID(inv.TeamID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTeamNotFound
	}
	if requesterRole != user.RoleAdmin && t.CoachID != requesterID {
		return ErrNotTeamCoach
	}

	return s.repo.Delete(inv.ID)
}

// ListForTeam returns a team's invitations to its coach or an admin.
func (s *Service) ListForTeam(requesterID uint, requesterRole string, teamID uint) ([]Invitation, error) {
	t, err := s.teamRepo.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTeamNotFound
	}
	if requesterRole != user.RoleAdmin && t.CoachID != requesterID {
		return nil, ErrNotTeamCoach
	}
	return s.repo.ListByTeam(teamID)
}

// ListForEmail returns the invitations addressed to the given email.
func (s *Service) ListForEmail(email string) ([]Invitation, error) {
	return s.repo.ListByEmail(email)
}

func (s *Service) userByID(id uint) (*user.User, error) {
	var u user.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) userByEmail(email string) (*user.User, error) {
	var u user.User
	err := s.db.Where("LOWER(email) = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
