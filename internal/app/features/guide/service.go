// internal/app/features/guide/service.go
package guide

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

var chamberIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Suggested actions the frontend knows how to surface.
const (
	ActionViewTiers  = "VIEW_TIERS"
	ActionGoToSearch = "GO_TO_SEARCH"
)

// Service runs the chamber guide conversation: request validation, the
// generation call, and the suggested-action classification of the reply.
type Service struct {
	generator Generator
	sanitize  *bluemonday.Policy
	log       *zap.Logger
}

func NewService(generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator: generator,
		sanitize:  bluemonday.StrictPolicy(),
		log:       logger,
	}
}

// ChatRequest is the caller-supplied conversation state.
type ChatRequest struct {
	Message   string `json:"message"`
	History   []Turn `json:"history"`
	ChamberID string `json:"chamberId,omitempty"`
}

// ChatResponse carries the reply and an optional UI hint.
type ChatResponse struct {
	Reply           string `json:"reply"`
	SuggestedAction string `json:"suggestedAction,omitempty"`
}

// validate applies the request bounds before anything reaches the
// generation backend.
func (r *ChatRequest) validate() error {
	if r.Message == "" {
		return apperr.New(apperr.InvalidArgument, "message is required")
	}
	if utf8.RuneCountInString(r.Message) > limits.MaxChatMessageLen {
		return apperr.Newf(apperr.InvalidArgument, "message exceeds %d characters", limits.MaxChatMessageLen)
	}
	if len(r.History) > limits.MaxChatHistoryLen {
		return apperr.Newf(apperr.InvalidArgument, "history exceeds %d entries", limits.MaxChatHistoryLen)
	}
	for _, turn := range r.History {
		if turn.Role != "user" && turn.Role != "assistant" {
			return apperr.Newf(apperr.InvalidArgument, "history role must be user or assistant, got %q", turn.Role)
		}
		if turn.Content == "" {
			return apperr.New(apperr.InvalidArgument, "history content cannot be empty")
		}
	}
	if r.ChamberID != "" && !chamberIDPattern.MatchString(r.ChamberID) {
		return apperr.New(apperr.InvalidArgument, "chamberId may contain only letters, digits, hyphens, and underscores")
	}
	return nil
}

// systemInstruction builds the assistant's ground rules. Only the
// pattern-validated chamber id is interpolated; free-form user content
// never is.
func systemInstruction(chamberID string) string {
	chamberContext := "None (General Search)"
	if chamberID != "" {
		chamberContext = chamberID
	}
	return fmt.Sprintf(`You are the "Chamber Guide", a helpful, knowledgeable, and professional assistant for a Chamber of Commerce directory.
Your goal is to help users "Find, Compare, and Join" local chambers.

**Tone**: Professional but warm. Concise and action-oriented. Helpful and guiding.

**Context**: Chamber ID (if specific): %s

**Instructions**:
- If the user asks about a specific chamber (and ID is present), answer based on general knowledge of chambers (value, networking, advocacy).
- If the user wants to find a chamber, ask for their location.
- If the user wants to compare, explain the standard tier structures (Networking vs. Growth vs. Leadership).
- If the user wants to join, encourage them to click "Join Now" or "View Tiers".
- Keep responses under 3 sentences unless detailed comparison is asked.`, chamberContext)
}

// Chat validates the request, generates a reply, and classifies it.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if err := req.validate(); err != nil {
		return ChatResponse{}, err
	}

	reply, err := s.generator.Generate(ctx, systemInstruction(req.ChamberID), req.History, req.Message)
	if err != nil {
		s.log.Error("guide generation failed", zap.Error(err))
		return ChatResponse{}, apperr.Wrap(apperr.Internal, "failed to generate response", err)
	}

	reply = s.sanitize.Sanitize(reply)
	return ChatResponse{
		Reply:           reply,
		SuggestedAction: suggestAction(reply),
	}, nil
}

// suggestAction maps reply keywords to a frontend action hint.
func suggestAction(reply string) string {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "join") || strings.Contains(lower, "sign up"):
		return ActionViewTiers
	case strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		return ActionGoToSearch
	default:
		return ""
	}
}
