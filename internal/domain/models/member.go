// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses.
const (
	MembershipProvisional    = "Provisional"
	MembershipPendingInvoice = "Pending_Invoice"
	MembershipActive         = "Active"
	MembershipNone           = "None"
)

// Payment methods accepted at join time.
const (
	PaymentCard    = "Card"
	PaymentInvoice = "Invoice"
)

// Member is one business that joined (or is joining) a chamber.
type Member struct {
	ID          primitive.ObjectID `bson:"_id"`
	ChamberID   string             `bson:"chamber_id"`
	CompanyName string             `bson:"company_name"`
	Email       string             `bson:"email"`
	Tier        string             `bson:"tier"`
	Amount      int64              `bson:"amount"` // cents
	Status      string             `bson:"status"`
	IsNonProfit bool               `bson:"is_non_profit,omitempty"`
	JoinedAt    time.Time          `bson:"joined_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}
