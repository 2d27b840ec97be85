// internal/app/features/guide/tiers.go
package guide

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

// TierSuggestion is one proposed membership tier for the admin wizard.
// Price is in cents.
type TierSuggestion struct {
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
}

// TiersRequest asks for a tier structure tailored to a chamber.
type TiersRequest struct {
	ChamberName string `json:"chamberName"`
	Region      string `json:"region"`
}

const tierInstruction = `You design membership tier structures for Chambers of Commerce.
Respond with a JSON array of exactly 3 tiers, ordered cheapest first. Each tier is an object
with fields: name (string), price (integer, US cents per year), description (one sentence),
benefits (array of 3-5 short strings). Respond with the JSON array only, no prose and no
markdown fences.`

// defaultTiers is the fallback structure used when the backend's answer
// cannot be parsed. Mirrors the standard chamber tiering.
func defaultTiers() []TierSuggestion {
	return []TierSuggestion{
		{Name: "Bronze", Price: 30000, Description: "Entry level membership with basic directory listing and networking access.", Benefits: []string{"Directory Listing", "Monthly Newsletter", "Networking Events"}},
		{Name: "Silver", Price: 75000, Description: "Growth membership with enhanced visibility and event access.", Benefits: []string{"Enhanced Listing", "Event Tickets", "Committee Access", "Logo Placement"}},
		{Name: "Gold", Price: 150000, Description: "Premier partnership with maximum exposure and leadership opportunities.", Benefits: []string{"Priority Listing", "Board Eligibility", "Sponsorship Rights", "Featured Events"}},
	}
}

// SuggestTiers asks the generation backend for a three-tier structure.
// The chamber name and region ride in the user-content channel, never in
// the instruction. An unparseable answer falls back to the standard tiers
// rather than failing the wizard.
func (s *Service) SuggestTiers(ctx context.Context, req TiersRequest) ([]TierSuggestion, error) {
	if req.ChamberName == "" {
		return nil, apperr.New(apperr.InvalidArgument, "chamberName is required")
	}

	prompt := "Chamber: " + req.ChamberName
	if req.Region != "" {
		prompt += "\nRegion: " + req.Region
	}

	answer, err := s.generator.Generate(ctx, tierInstruction, nil, prompt)
	if err != nil {
		s.log.Error("tier suggestion generation failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "failed to generate tier suggestions", err)
	}

	tiers, ok := parseTiers(answer)
	if !ok {
		s.log.Warn("unparseable tier suggestion answer, using defaults",
			zap.String("chamber_name", req.ChamberName))
		return defaultTiers(), nil
	}
	return tiers, nil
}

// parseTiers decodes the backend's JSON answer, tolerating markdown fences
// some models insist on adding.
func parseTiers(answer string) ([]TierSuggestion, bool) {
	trimmed := strings.TrimSpace(answer)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var tiers []TierSuggestion
	if err := json.Unmarshal([]byte(trimmed), &tiers); err != nil {
		return nil, false
	}
	if len(tiers) != 3 {
		return nil, false
	}
	for i := range tiers {
		if tiers[i].Name == "" || tiers[i].Price < 0 {
			return nil, false
		}
		if len(tiers[i].Benefits) > limits.MaxTierBenefits {
			tiers[i].Benefits = tiers[i].Benefits[:limits.MaxTierBenefits]
		}
	}
	return tiers, true
}
