// internal/app/system/limits/limits.go
package limits

// Request body and field limits. These are enforced server-side regardless
// of what the UI does.
const (
	// MaxJSONBodySize caps JSON request bodies across the API.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxChatMessageLen is the maximum chat message length in characters.
	MaxChatMessageLen = 2000

	// MaxChatHistoryLen is the maximum number of prior turns accepted.
	MaxChatHistoryLen = 50

	// MaxLeadMessageLen caps the free-text message on a membership lead.
	MaxLeadMessageLen = 4000

	// MaxTierBenefits caps the number of benefits on one membership tier.
	MaxTierBenefits = 20
)
