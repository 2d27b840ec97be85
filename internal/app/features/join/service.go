// internal/app/features/join/service.go
package join

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	leadstore "github.com/localchambers/localchambers/internal/app/store/leads"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/normalize"
	"github.com/localchambers/localchambers/internal/domain/models"
)

var chamberIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Service processes membership submissions: card payments through the
// gateway, invoice requests as leads for the chamber to follow up.
type Service struct {
	chambers *chamberstore.Store
	members  *memberstore.Store
	leads    *leadstore.Store
	gateway  Gateway
	log      *zap.Logger
}

func NewService(chambers *chamberstore.Store, members *memberstore.Store, leads *leadstore.Store, gateway Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chambers: chambers,
		members:  members,
		leads:    leads,
		gateway:  gateway,
		log:      logger,
	}
}

// MembershipPayload is the join submission.
type MembershipPayload struct {
	ChamberID string `json:"chamberId"`
	User      struct {
		Email       string `json:"email"`
		CompanyName string `json:"companyName"`
		FirstName   string `json:"firstName,omitempty"`
		LastName    string `json:"lastName,omitempty"`
		IsNonProfit bool   `json:"isNonProfit"`
	} `json:"user"`
	Tier          string `json:"tier"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        int64  `json:"amount"` // cents
}

// TransactionResult reports the outcome and the resulting membership state.
type TransactionResult struct {
	Status           string `json:"status"` // "success" or "error"
	MembershipStatus string `json:"membership_status"`
	Message          string `json:"message,omitempty"`
	InvoiceID        string `json:"invoiceId,omitempty"`
}

func (p *MembershipPayload) validate() error {
	if p.ChamberID == "" || !chamberIDPattern.MatchString(p.ChamberID) {
		return apperr.New(apperr.InvalidArgument, "chamberId is required and may contain only letters, digits, hyphens, and underscores")
	}
	if normalize.Email(p.User.Email) == "" {
		return apperr.New(apperr.InvalidArgument, "user email is required")
	}
	if p.User.CompanyName == "" {
		return apperr.New(apperr.InvalidArgument, "company name is required")
	}
	if p.Tier == "" {
		return apperr.New(apperr.InvalidArgument, "tier is required")
	}
	if p.PaymentMethod != models.PaymentCard && p.PaymentMethod != models.PaymentInvoice {
		return apperr.Newf(apperr.InvalidArgument, "paymentMethod must be %s or %s", models.PaymentCard, models.PaymentInvoice)
	}
	if p.PaymentMethod == models.PaymentCard && p.Amount <= 0 {
		return apperr.New(apperr.InvalidArgument, "amount must be positive for card payments")
	}
	return nil
}

// Process validates the payload, confirms the chamber exists, and routes
// to the card or invoice path.
func (s *Service) Process(ctx context.Context, payload MembershipPayload) (TransactionResult, error) {
	if err := payload.validate(); err != nil {
		return TransactionResult{}, err
	}

	ch, err := s.chambers.Get(ctx, payload.ChamberID)
	if err != nil {
		if errors.Is(err, chamberstore.ErrNotFound) {
			return TransactionResult{}, apperr.Newf(apperr.NotFound, "chamber %s not found", payload.ChamberID)
		}
		return TransactionResult{}, apperr.Wrap(apperr.Internal, "failed to load chamber", err)
	}

	if payload.PaymentMethod == models.PaymentInvoice {
		return s.processInvoice(ctx, payload)
	}
	return s.processCard(ctx, payload, ch.Name)
}

func (s *Service) processCard(ctx context.Context, payload MembershipPayload, chamberName string) (TransactionResult, error) {
	result, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:      payload.Amount,
		Currency:    "usd",
		Description: fmt.Sprintf("%s membership, %s tier", chamberName, payload.Tier),
		Email:       normalize.Email(payload.User.Email),
		Reference:   payload.ChamberID,
	})
	if err != nil {
		return TransactionResult{}, apperr.Wrap(apperr.Internal, "payment could not be processed", err)
	}
	if result.Status != "succeeded" {
		msg := result.Message
		if msg == "" {
			msg = "card was declined"
		}
		return TransactionResult{
			Status:           "error",
			MembershipStatus: models.MembershipNone,
			Message:          msg,
		}, nil
	}

	member := models.Member{
		ChamberID:   payload.ChamberID,
		CompanyName: payload.User.CompanyName,
		Email:       payload.User.Email,
		Tier:        payload.Tier,
		Amount:      payload.Amount,
		Status:      models.MembershipProvisional,
		IsNonProfit: payload.User.IsNonProfit,
	}
	if _, err := s.members.Create(ctx, member); err != nil {
		// The charge went through; the member record must not be lost
		// silently.
		s.log.Error("member record failed after successful charge",
			zap.String("chamber_id", payload.ChamberID),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err))
		return TransactionResult{}, apperr.Wrap(apperr.Internal,
			"payment succeeded, but membership could not be recorded; contact support", err)
	}

	s.log.Info("card membership created",
		zap.String("chamber_id", payload.ChamberID),
		zap.String("tier", payload.Tier),
		zap.String("transaction_id", result.TransactionID))

	return TransactionResult{
		Status:           "success",
		MembershipStatus: models.MembershipProvisional,
	}, nil
}

func (s *Service) processInvoice(ctx context.Context, payload MembershipPayload) (TransactionResult, error) {
	member := models.Member{
		ChamberID:   payload.ChamberID,
		CompanyName: payload.User.CompanyName,
		Email:       payload.User.Email,
		Tier:        payload.Tier,
		Amount:      payload.Amount,
		Status:      models.MembershipPendingInvoice,
		IsNonProfit: payload.User.IsNonProfit,
	}
	if _, err := s.members.Create(ctx, member); err != nil {
		return TransactionResult{}, apperr.Wrap(apperr.Internal, "failed to record membership", err)
	}

	contactName := payload.User.FirstName
	if payload.User.LastName != "" {
		if contactName != "" {
			contactName += " "
		}
		contactName += payload.User.LastName
	}
	lead, err := s.leads.Create(ctx, models.Lead{
		ChamberID:   payload.ChamberID,
		ProductName: payload.Tier,
		UserName:    contactName,
		UserEmail:   payload.User.Email,
		Message:     fmt.Sprintf("Invoice requested for %s tier by %s", payload.Tier, payload.User.CompanyName),
	})
	if err != nil {
		return TransactionResult{}, apperr.Wrap(apperr.Internal, "failed to record invoice request", err)
	}

	s.log.Info("invoice membership requested",
		zap.String("chamber_id", payload.ChamberID),
		zap.String("tier", payload.Tier))

	return TransactionResult{
		Status:           "success",
		MembershipStatus: models.MembershipPendingInvoice,
		InvoiceID:        lead.ID.Hex(),
	}, nil
}
