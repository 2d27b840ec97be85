// internal/app/features/handoff/service.go
package handoff

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
)

// packetTTL is how long the signed download link stays valid.
const packetTTL = 15 * time.Minute

// BlobStore is the slice of waffle's storage interface the packet service
// needs. Declared locally so tests can substitute an in-memory store.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	PresignedURL(ctx context.Context, path string, opts *storage.PresignOptions) (string, error)
}

// Service produces the tamper-evident handoff packet: a rendered snapshot
// of a chamber's aggregate state, stored in blob storage with its salt and
// digest, retrievable through a short-lived signed URL.
type Service struct {
	chambers    *chamberstore.Store
	members     *memberstore.Store
	credentials *credentialstore.Store
	storage     BlobStore
	log         *zap.Logger
}

func NewService(chambers *chamberstore.Store, members *memberstore.Store, credentials *credentialstore.Store, store BlobStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chambers:    chambers,
		members:     members,
		credentials: credentials,
		storage:     store,
		log:         logger,
	}
}

// Result is returned to the caller so it can fetch and independently
// verify the packet.
type Result struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
	Hash        string `json:"hash"`
}

// packetMeta is stored as a sidecar object next to the PDF so the salt and
// digest stay inspectable without touching the artifact itself.
type packetMeta struct {
	Salt        string    `json:"salt"`
	Hash        string    `json:"hash"`
	GeneratedBy string    `json:"generatedBy"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Generate renders, signs, and stores the packet for chamberID. The caller
// must hold the admin claim for exactly that chamber.
func (s *Service) Generate(ctx context.Context, userID, chamberID string) (Result, error) {
	if chamberID == "" {
		return Result{}, apperr.New(apperr.InvalidArgument, "chamberId is required")
	}

	claimed, err := s.credentials.ChamberClaim(ctx, userID)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to load credentials", err)
	}
	// Exact equality only. A claim for a different chamber, or no claim at
	// all, is the same refusal.
	if claimed == "" || claimed != chamberID {
		return Result{}, apperr.New(apperr.PermissionDenied, "you are not the verified administrator of this chamber")
	}

	ch, err := s.chambers.Get(ctx, chamberID)
	if err != nil {
		if errors.Is(err, chamberstore.ErrNotFound) {
			return Result{}, apperr.Newf(apperr.NotFound, "chamber %s not found", chamberID)
		}
		return Result{}, apperr.Wrap(apperr.Internal, "failed to load chamber", err)
	}

	memberCount, err := s.members.CountByChamber(ctx, chamberID)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to count members", err)
	}

	now := time.Now().UTC()
	pdf := renderPacket(packetInfo{
		ChamberName: ch.Name,
		Region:      ch.Region,
		MemberCount: memberCount,
		GeneratedAt: now,
	})

	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to generate salt", err)
	}
	salt := hex.EncodeToString(saltBytes)

	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write(pdf)
	digest := hex.EncodeToString(mac.Sum(nil))

	path := fmt.Sprintf("packets/%s_%s.pdf", chamberID, uuid.New().String()[:8])
	if err := s.storage.Put(ctx, path, bytes.NewReader(pdf), &storage.PutOptions{
		ContentType: "application/pdf",
	}); err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to store packet", err)
	}

	meta, err := json.Marshal(packetMeta{
		Salt:        salt,
		Hash:        digest,
		GeneratedBy: userID,
		GeneratedAt: now,
	})
	if err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to encode packet metadata", err)
	}
	if err := s.storage.Put(ctx, path+".meta.json", bytes.NewReader(meta), &storage.PutOptions{
		ContentType: "application/json",
	}); err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to store packet metadata", err)
	}

	url, err := s.storage.PresignedURL(ctx, path, &storage.PresignOptions{
		Expires:            packetTTL,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", chamberID+"-handoff.pdf"),
	})
	if err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "failed to sign download URL", err)
	}

	s.log.Info("handoff packet generated",
		zap.String("chamber_id", chamberID),
		zap.String("user_id", userID),
		zap.String("path", path),
		zap.Int64("member_count", memberCount))

	return Result{
		DownloadURL: url,
		ExpiresAt:   now.Add(packetTTL).Format(time.RFC3339),
		Hash:        digest,
	}, nil
}
