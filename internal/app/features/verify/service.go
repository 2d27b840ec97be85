// internal/app/features/verify/service.go
package verify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/normalize"
	"github.com/localchambers/localchambers/internal/domain/models"
)

var chamberIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// credentialGranter is the slice of the credential store the claim workflow
// needs. Narrowed to an interface so tests can fail the post-commit grant.
type credentialGranter interface {
	Merge(ctx context.Context, userID string, claims map[string]string) error
}

// Service runs the chamber claim workflow: precondition checks, the
// domain-match authorization gate, the transactional compare-and-set on the
// organization record, and post-commit credential issuance.
type Service struct {
	chambers    *chamberstore.Store
	credentials credentialGranter
	log         *zap.Logger
}

func NewService(chambers *chamberstore.Store, credentials *credentialstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{chambers: chambers, credentials: credentials, log: logger}
}

// Verify claims chamberID for the given identity. On success it returns a
// confirmation message naming the chamber. Errors carry an apperr.Kind the
// handler maps to a status code; conflict and not-found from inside the
// claim transaction pass through unchanged so callers can tell "someone
// else owns this" from "retry me".
func (s *Service) Verify(ctx context.Context, user *auth.SessionUser, chamberID string) (string, error) {
	if user == nil || user.ID == "" {
		return "", apperr.New(apperr.Unauthenticated, "sign in to verify a chamber")
	}
	if chamberID == "" || !chamberIDPattern.MatchString(chamberID) {
		return "", apperr.New(apperr.InvalidArgument, "chamberId is required and may contain only letters, digits, hyphens, and underscores")
	}
	if !user.EmailVerified {
		return "", apperr.New(apperr.FailedPrecondition, "verify your email address before claiming a chamber")
	}

	ch, err := s.chambers.Get(ctx, chamberID)
	if err != nil {
		if errors.Is(err, chamberstore.ErrNotFound) {
			return "", apperr.Newf(apperr.NotFound, "chamber %s not found", chamberID)
		}
		return "", apperr.Wrap(apperr.Internal, "failed to load chamber", err)
	}

	if ch.WebsiteDomain == "" {
		return "", apperr.New(apperr.FailedPrecondition, "this chamber has no registered website domain on file")
	}

	emailDomain := normalize.EmailDomain(user.Email)
	if emailDomain == "" || !strings.EqualFold(emailDomain, ch.WebsiteDomain) {
		return "", apperr.Newf(apperr.PermissionDenied,
			"your email domain %q does not match the chamber's registered domain %q",
			emailDomain, ch.WebsiteDomain)
	}

	// The compare-and-set is the single mutation boundary; everything above
	// is advisory and safe to repeat.
	if err := s.chambers.ClaimAsAdmin(ctx, chamberID, user.ID); err != nil {
		switch {
		case errors.Is(err, chamberstore.ErrNotFound):
			return "", apperr.Newf(apperr.NotFound, "chamber %s not found", chamberID)
		case errors.Is(err, chamberstore.ErrAlreadyClaimed):
			return "", apperr.New(apperr.AlreadyExists, "this chamber has already been verified by another administrator")
		default:
			s.log.Warn("chamber claim transaction failed",
				zap.String("chamber_id", chamberID),
				zap.String("user_id", user.ID),
				zap.Error(err))
			return "", apperr.Wrap(apperr.Aborted, "verification could not be completed, please retry", err)
		}
	}

	// Credential issuance is strictly post-commit. A failure here leaves
	// the record Verified without the matching claim; surface that state
	// explicitly instead of a generic error so the caller knows support
	// reconciliation is needed.
	grant := map[string]string{
		models.ClaimChamberID: chamberID,
		models.ClaimRole:      models.RoleAdmin,
	}
	if err := s.credentials.Merge(ctx, user.ID, grant); err != nil {
		s.log.Error("credential grant failed after claim commit",
			zap.String("chamber_id", chamberID),
			zap.String("user_id", user.ID),
			zap.Error(err))
		return "", apperr.Wrap(apperr.Internal,
			"verification recorded, but privilege assignment failed; contact support", err)
	}

	return fmt.Sprintf("You are now the verified administrator of %s.", ch.Name), nil
}
