package join_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/features/join"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	leadstore "github.com/localchambers/localchambers/internal/app/store/leads"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/domain/models"
	"github.com/localchambers/localchambers/internal/testutil"
)

// gatewayStub answers charge calls with a fixed result over HTTP so the
// real resty client is exercised end to end.
func gatewayStub(t *testing.T, status string, message string) *join.HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req join.ChargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad charge request: %v", err)
		}
		if req.Currency != "usd" || req.Amount <= 0 {
			t.Errorf("bad charge fields: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(join.ChargeResult{
			Status:        status,
			TransactionID: "txn-1",
			Message:       message,
		})
	}))
	t.Cleanup(srv.Close)
	return join.NewHTTPGateway(srv.URL, "test-key", zap.NewNop())
}

func newTestService(t *testing.T, gw join.Gateway) (*join.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := join.NewService(
		chamberstore.New(db.Client(), db),
		memberstore.New(db),
		leadstore.New(db),
		gw,
		zap.NewNop(),
	)
	return svc, testutil.NewFixtures(t, db)
}

func cardPayload() join.MembershipPayload {
	p := join.MembershipPayload{
		ChamberID:     "springfield",
		Tier:          "Silver",
		PaymentMethod: models.PaymentCard,
		Amount:        75000,
	}
	p.User.Email = "owner@business.example"
	p.User.CompanyName = "Example Business"
	return p
}

func TestProcess_CardSuccess(t *testing.T) {
	svc, fixtures := newTestService(t, gatewayStub(t, "succeeded", ""))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org")

	result, err := svc.Process(ctx, cardPayload())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Status != "success" || result.MembershipStatus != models.MembershipProvisional {
		t.Errorf("unexpected result: %+v", result)
	}

	members := memberstore.New(fixtures.DB())
	list, err := members.ListByChamber(ctx, "springfield", models.MembershipProvisional, 10)
	if err != nil {
		t.Fatalf("ListByChamber: %v", err)
	}
	if len(list) != 1 || list[0].CompanyName != "Example Business" {
		t.Errorf("member not recorded: %+v", list)
	}
}

func TestProcess_CardDeclined(t *testing.T) {
	svc, fixtures := newTestService(t, gatewayStub(t, "declined", "insufficient funds"))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org")

	result, err := svc.Process(ctx, cardPayload())
	if err != nil {
		t.Fatalf("a decline is a result, not an error: %v", err)
	}
	if result.Status != "error" || result.MembershipStatus != models.MembershipNone {
		t.Errorf("unexpected result: %+v", result)
	}

	// No member record on a decline.
	members := memberstore.New(fixtures.DB())
	count, err := members.CountByChamber(ctx, "springfield")
	if err != nil {
		t.Fatalf("CountByChamber: %v", err)
	}
	if count != 0 {
		t.Errorf("declined charge must not create a member, got %d", count)
	}
}

func TestProcess_Invoice(t *testing.T) {
	svc, fixtures := newTestService(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org")

	p := cardPayload()
	p.PaymentMethod = models.PaymentInvoice
	p.User.FirstName = "Jo"
	p.User.LastName = "Smith"

	result, err := svc.Process(ctx, p)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Status != "success" || result.MembershipStatus != models.MembershipPendingInvoice {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.InvoiceID == "" {
		t.Error("invoice path must return a lead id")
	}

	leads := leadstore.New(fixtures.DB())
	list, err := leads.ListByChamber(ctx, "springfield", 10)
	if err != nil {
		t.Fatalf("ListByChamber leads: %v", err)
	}
	if len(list) != 1 || list[0].UserName != "Jo Smith" {
		t.Errorf("lead not recorded: %+v", list)
	}

	members := memberstore.New(fixtures.DB())
	pending, err := members.ListByChamber(ctx, "springfield", models.MembershipPendingInvoice, 10)
	if err != nil {
		t.Fatalf("ListByChamber members: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending-invoice member not recorded: %+v", pending)
	}
}

func TestProcess_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name   string
		mutate func(*join.MembershipPayload)
	}{
		{"missing chamber", func(p *join.MembershipPayload) { p.ChamberID = "" }},
		{"bad chamber id", func(p *join.MembershipPayload) { p.ChamberID = "has space" }},
		{"missing email", func(p *join.MembershipPayload) { p.User.Email = "" }},
		{"missing company", func(p *join.MembershipPayload) { p.User.CompanyName = "" }},
		{"missing tier", func(p *join.MembershipPayload) { p.Tier = "" }},
		{"bad payment method", func(p *join.MembershipPayload) { p.PaymentMethod = "Crypto" }},
		{"zero card amount", func(p *join.MembershipPayload) { p.Amount = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cardPayload()
			tt.mutate(&p)
			if _, err := svc.Process(ctx, p); !apperr.Is(err, apperr.InvalidArgument) {
				t.Errorf("got %v, want invalid-argument", err)
			}
		})
	}
}

func TestProcess_UnknownChamber(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.Process(ctx, cardPayload()); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("got %v, want not-found", err)
	}
}
