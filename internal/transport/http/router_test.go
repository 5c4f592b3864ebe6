package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"heirloom/internal/admin"
	"heirloom/internal/audit"
	"heirloom/internal/claim"
	"heirloom/internal/kyc"
	"heirloom/internal/notification"
	"heirloom/internal/plan"
	"heirloom/internal/token"
	httptransport "heirloom/internal/transport/http"
	"heirloom/internal/version"
	id "heirloom/pkg/domain"
)

const testSigningKey = "router-test-signing-key"

// RouterSuite drives the full HTTP surface against real services backed by
// in-memory stores, with real bearer tokens. Only external infrastructure
// (Postgres, Redis, Kafka) is absent.
type RouterSuite struct {
	suite.Suite
	router     http.Handler
	planStore  *plan.MemoryStore
	auditStore *audit.MemoryStore

	adminID id.UserID
	ownerID id.UserID
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)

	adminStore := admin.NewMemoryStore()
	kycStore := kyc.NewMemoryStore()
	s.planStore = plan.NewMemoryStore()
	claimStore := claim.NewMemoryStore()
	s.auditStore = audit.NewMemoryStore()
	versionStore := version.NewMemoryStore()

	publisher := audit.NewPublisher(s.auditStore)
	notifier := notification.New(notification.NewMemoryStore(), notification.WithLogger(logger))

	adminSvc := admin.New(adminStore, admin.WithLogger(logger), admin.WithAuditPublisher(publisher))
	kycSvc := kyc.New(kycStore, adminSvc,
		kyc.WithLogger(logger),
		kyc.WithAuditPublisher(publisher),
		kyc.WithNotifier(notifier),
	)
	planSvc := plan.New(s.planStore, kycSvc, adminSvc,
		plan.WithLogger(logger),
		plan.WithAuditPublisher(publisher),
		plan.WithNotifier(notifier),
	)
	claimSvc := claim.New(claimStore, s.planStore, adminSvc,
		claim.WithLogger(logger),
		claim.WithAuditPublisher(publisher),
		claim.WithNotifier(notifier),
	)
	versionSvc := version.New(versionStore, adminSvc,
		version.WithLogger(logger),
		version.WithAuditPublisher(publisher),
	)
	auditSvc := audit.NewService(s.auditStore, adminSvc)

	handler := httptransport.NewHandler(logger, planSvc, claimSvc, kycSvc, adminSvc, auditSvc, versionSvc, notifier, nil)
	s.router = httptransport.NewRouter(handler, token.NewJWTService(testSigningKey))

	s.adminID = id.UserID(uuid.New())
	s.ownerID = id.UserID(uuid.New())
}

func (s *RouterSuite) bearerFor(userID id.UserID) string {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSigningKey))
	s.Require().NoError(err)
	return "Bearer " + raw
}

func (s *RouterSuite) do(method, path string, userID *id.UserID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != nil {
		req.Header.Set("Authorization", s.bearerFor(*userID))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

// registerAdmin claims the admin slot for s.adminID.
func (s *RouterSuite) registerAdmin() {
	rec := s.do(http.MethodPost, "/admin/initialize", &s.adminID, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)
}

// approveOwner walks s.ownerID through submission and approval.
func (s *RouterSuite) approveOwner() {
	rec := s.do(http.MethodPost, "/kyc/submit", &s.ownerID, nil)
	s.Require().Equal(http.StatusAccepted, rec.Code)
	rec = s.do(http.MethodPost, "/admin/kyc/"+s.ownerID.String()+"/approve", &s.adminID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) createPlanBody() map[string]any {
	return map[string]any{
		"title":               "Family estate",
		"description":         "Split between the children",
		"total_amount":        500000,
		"asset":               "USDC",
		"distribution_method": "LumpSum",
		"beneficiaries": []map[string]any{
			{
				"full_name":     "Alice Heir",
				"email":         "alice@example.com",
				"claim_code":    111111,
				"bank_account":  "DE89370400440532013000",
				"allocation_bp": 6000,
			},
			{
				"full_name":     "Bob Heir",
				"email":         "bob@example.com",
				"claim_code":    222222,
				"bank_account":  "FR1420041010050500013M02606",
				"allocation_bp": 4000,
			},
		},
	}
}

func (s *RouterSuite) TestPublicEndpoints() {
	s.Run("health needs no token", func() {
		rec := s.do(http.MethodGet, "/healthz", nil, nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("metrics needs no token", func() {
		rec := s.do(http.MethodGet, "/metrics", nil, nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("api endpoints reject missing tokens", func() {
		for _, path := range []string{"/plans", "/kyc/status", "/notifications", "/admin/plans"} {
			rec := s.do(http.MethodGet, path, nil, nil)
			s.Equal(http.StatusUnauthorized, rec.Code, "path %s", path)
		}
	})
}

func (s *RouterSuite) TestPlanLifecycle() {
	s.registerAdmin()

	s.Run("creation requires verification approval", func() {
		rec := s.do(http.MethodPost, "/plans", &s.ownerID, s.createPlanBody())
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.approveOwner()

	var created struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		TotalAllocationBp uint32 `json:"total_allocation_bp"`
		Beneficiaries     []struct {
			Index        int    `json:"index"`
			AllocationBp uint32 `json:"allocation_bp"`
		} `json:"beneficiaries"`
	}

	s.Run("approved owner creates a plan", func() {
		rec := s.do(http.MethodPost, "/plans", &s.ownerID, s.createPlanBody())
		s.Require().Equal(http.StatusCreated, rec.Code)
		s.decode(rec, &created)
		s.Equal("active", created.Status)
		s.Equal(uint32(10000), created.TotalAllocationBp)
		s.Len(created.Beneficiaries, 2)
	})

	s.Run("responses never expose identity or account data", func() {
		rec := s.do(http.MethodGet, "/plans/"+created.ID, &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.NotContains(rec.Body.String(), "alice@example.com")
		s.NotContains(rec.Body.String(), "DE89370400440532013000")
		s.NotContains(rec.Body.String(), "111111")
	})

	s.Run("another user cannot see the plan", func() {
		stranger := id.UserID(uuid.New())
		rec := s.do(http.MethodGet, "/plans/"+created.ID, &stranger, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("overshooting addition is rejected", func() {
		rec := s.do(http.MethodPost, "/plans/"+created.ID+"/beneficiaries", &s.ownerID, map[string]any{
			"full_name": "Carol", "email": "carol@example.com", "claim_code": 333333,
			"bank_account": "ACCT", "allocation_bp": 2000,
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("remove then add succeeds", func() {
		rec := s.do(http.MethodDelete, "/plans/"+created.ID+"/beneficiaries/0", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/plans/"+created.ID+"/beneficiaries", &s.ownerID, map[string]any{
			"full_name": "Carol", "email": "carol@example.com", "claim_code": 333333,
			"bank_account": "ACCT", "allocation_bp": 2000,
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var updated struct {
			TotalAllocationBp uint32 `json:"total_allocation_bp"`
		}
		s.decode(rec, &updated)
		s.Equal(uint32(6000), updated.TotalAllocationBp)
	})

	s.Run("deactivation is terminal", func() {
		rec := s.do(http.MethodPost, "/plans/"+created.ID+"/deactivate", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/plans/"+created.ID+"/deactivate", &s.ownerID, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("deactivated listing includes the plan", func() {
		rec := s.do(http.MethodGet, "/plans/deactivated", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var plans []json.RawMessage
		s.decode(rec, &plans)
		s.Len(plans, 1)
	})
}

func (s *RouterSuite) TestClaimFlow() {
	// Seed plans directly so creation time is under test control.
	seed := func(method id.DistributionMethod, createdAt time.Time, email string, code uint32) id.PlanID {
		b, err := plan.BeneficiaryInput{
			FullName: "Heir", Email: email, ClaimCode: code,
			BankAccount: "ACCT", AllocationBp: 10000,
		}.Fingerprint()
		s.Require().NoError(err)

		p := &plan.Plan{
			OwnerID:            s.ownerID,
			Title:              "Seeded",
			TotalAmount:        1000,
			Asset:              id.AssetUSDC,
			DistributionMethod: method,
			Beneficiaries:      []plan.Beneficiary{b},
			TotalAllocationBp:  10000,
			Status:             plan.StatusActive,
			CreatedAt:          createdAt,
		}
		s.Require().NoError(s.planStore.Create(context.Background(), p))
		return p.ID
	}

	claimant := id.UserID(uuid.New())
	monthAgo := time.Now().UTC().Add(-31 * 24 * time.Hour)
	lumpID := seed(id.DistributionLumpSum, time.Now().UTC(), "heir@example.com", 123456)
	openMonthlyID := seed(id.DistributionMonthly, monthAgo, "heir@example.com", 123456)
	youngYearlyID := seed(id.DistributionYearly, time.Now().UTC(), "heir@example.com", 123456)

	s.Run("valid credentials settle the claim", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": lumpID.String(), "email": "heir@example.com", "claim_code": 123456,
		})
		s.Require().Equal(http.StatusCreated, rec.Code)

		var settled struct {
			PlanID           string `json:"plan_id"`
			BeneficiaryIndex int    `json:"beneficiary_index"`
		}
		s.decode(rec, &settled)
		s.Equal(lumpID.String(), settled.PlanID)
		s.Equal(0, settled.BeneficiaryIndex)
	})

	s.Run("second claim conflicts", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": lumpID.String(), "email": "heir@example.com", "claim_code": 123456,
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("wrong credentials are not found", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": openMonthlyID.String(), "email": "heir@example.com", "claim_code": 999999,
		})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("eligible monthly plan settles", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": openMonthlyID.String(), "email": "heir@example.com", "claim_code": 123456,
		})
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("young yearly plan conflicts", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": youngYearlyID.String(), "email": "heir@example.com", "claim_code": 123456,
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("malformed body is a bad request", func() {
		req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", s.bearerFor(claimant))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing email fails validation", func() {
		rec := s.do(http.MethodPost, "/claims", &claimant, map[string]any{
			"plan_id": lumpID.String(), "claim_code": 123456,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("owner lists the plan's claims", func() {
		rec := s.do(http.MethodGet, "/plans/"+lumpID.String()+"/claims", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var records []json.RawMessage
		s.decode(rec, &records)
		s.Len(records, 1)
	})

	s.Run("owner lists due plans", func() {
		rec := s.do(http.MethodGet, "/plans/due", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var plans []json.RawMessage
		s.decode(rec, &plans)
		s.Len(plans, 2)
	})

	s.Run("owner lists claimed plans", func() {
		rec := s.do(http.MethodGet, "/plans/claimed", &s.ownerID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var plans []json.RawMessage
		s.decode(rec, &plans)
		s.Len(plans, 2)
	})
}

func (s *RouterSuite) TestKycEndpoints() {
	s.registerAdmin()
	user := id.UserID(uuid.New())

	s.Run("status before submission is not found", func() {
		rec := s.do(http.MethodGet, "/kyc/status", &user, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("submit then read back", func() {
		rec := s.do(http.MethodPost, "/kyc/submit", &user, nil)
		s.Require().Equal(http.StatusAccepted, rec.Code)

		rec = s.do(http.MethodGet, "/kyc/status", &user, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var status struct {
			Submitted bool `json:"submitted"`
			Approved  bool `json:"approved"`
		}
		s.decode(rec, &status)
		s.True(status.Submitted)
		s.False(status.Approved)
	})

	s.Run("non-admin cannot moderate", func() {
		rec := s.do(http.MethodPost, "/admin/kyc/"+user.String()+"/approve", &user, nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("reject then approve after resubmission", func() {
		rec := s.do(http.MethodPost, "/admin/kyc/"+user.String()+"/reject", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/kyc/submit", &user, nil)
		s.Require().Equal(http.StatusAccepted, rec.Code)

		rec = s.do(http.MethodPost, "/admin/kyc/"+user.String()+"/approve", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/admin/kyc/"+user.String()+"/approve", &s.adminID, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("malformed user id in the path", func() {
		rec := s.do(http.MethodPost, "/admin/kyc/not-a-uuid/approve", &s.adminID, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestAdminEndpoints() {
	s.Run("second initialize conflicts", func() {
		s.registerAdmin()
		other := id.UserID(uuid.New())
		rec := s.do(http.MethodPost, "/admin/initialize", &other, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("non-admin listings are forbidden", func() {
		stranger := id.UserID(uuid.New())
		for _, path := range []string{
			"/admin/plans", "/admin/plans/deactivated", "/admin/plans/active",
			"/admin/plans/due", "/admin/claims", "/admin/kyc", "/admin/audit",
		} {
			rec := s.do(http.MethodGet, path, &stranger, nil)
			s.Equal(http.StatusForbidden, rec.Code, "path %s", path)
		}
	})

	s.Run("audit trail records the actions taken", func() {
		rec := s.do(http.MethodGet, "/admin/audit", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var entries []struct {
			Action string `json:"action"`
		}
		s.decode(rec, &entries)
		s.Require().NotEmpty(entries)
		s.Equal("ADMIN_INITIALIZED", entries[0].Action)
	})

	s.Run("audit limit query uses the recent listing", func() {
		rec := s.do(http.MethodGet, "/admin/audit?limit=1", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var entries []json.RawMessage
		s.decode(rec, &entries)
		s.Len(entries, 1)

		rec = s.do(http.MethodGet, "/admin/audit?limit=abc", &s.adminID, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("version lifecycle", func() {
		rec := s.do(http.MethodGet, "/admin/version", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var v struct {
			Version uint32 `json:"version"`
		}
		s.decode(rec, &v)
		s.Equal(uint32(1), v.Version)

		rec = s.do(http.MethodPost, "/admin/version/migrate", &s.adminID, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/admin/version/migrate", &s.adminID, nil)
		s.Equal(http.StatusConflict, rec.Code)

		rec = s.do(http.MethodPost, "/admin/version/upgrade", &s.adminID, map[string]any{
			"code_reference": "sha256:deadbeef",
		})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.decode(rec, &v)
		s.Equal(uint32(2), v.Version)

		rec = s.do(http.MethodPost, "/admin/version/upgrade", &s.adminID, map[string]any{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestNotifications() {
	s.registerAdmin()
	s.approveOwner()

	rec := s.do(http.MethodPost, "/plans", &s.ownerID, s.createPlanBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/notifications", &s.ownerID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var notifications []struct {
		Kind string `json:"kind"`
	}
	s.decode(rec, &notifications)
	s.Require().NotEmpty(notifications)
	s.Equal("plan_created", notifications[len(notifications)-1].Kind)
}
