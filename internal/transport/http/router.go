// Package httptransport is the thin HTTP layer. Handlers decode, delegate
// to domain services and encode; no business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heirloom/internal/platform/middleware"
)

// Handler bundles the domain services behind the HTTP API.
type Handler struct {
	logger        *slog.Logger
	plans         PlanService
	claims        ClaimService
	kyc           KycService
	admin         AdminService
	auditTrail    AuditService
	versions      VersionService
	notifications NotificationService
	health        HealthChecker
}

func NewHandler(
	logger *slog.Logger,
	plans PlanService,
	claims ClaimService,
	kycSvc KycService,
	adminSvc AdminService,
	auditSvc AuditService,
	versionSvc VersionService,
	notificationSvc NotificationService,
	health HealthChecker,
) *Handler {
	return &Handler{
		logger:        logger,
		plans:         plans,
		claims:        claims,
		kyc:           kycSvc,
		admin:         adminSvc,
		auditTrail:    auditSvc,
		versions:      versionSvc,
		notifications: notificationSvc,
		health:        health,
	}
}

// NewRouter wires all endpoints. Everything except health and metrics sits
// behind bearer-token authentication; admin authorization happens in the
// services, not here, so the rules live in exactly one place.
func NewRouter(h *Handler, validator middleware.TokenValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, h.logger))

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", h.handleCreatePlan)
			r.Get("/", h.handleListPlans)
			r.Get("/deactivated", h.handleListDeactivatedPlans)
			r.Get("/due", h.handleListDuePlans)
			r.Get("/claimed", h.handleListClaimedPlans)
			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", h.handleGetPlan)
				r.Post("/beneficiaries", h.handleAddBeneficiary)
				r.Delete("/beneficiaries/{index}", h.handleRemoveBeneficiary)
				r.Post("/deactivate", h.handleDeactivatePlan)
				r.Get("/claims", h.handleListPlanClaims)
			})
		})

		r.Post("/claims", h.handleRecordClaim)

		r.Route("/kyc", func(r chi.Router) {
			r.Post("/submit", h.handleKycSubmit)
			r.Get("/status", h.handleKycStatus)
		})

		r.Get("/notifications", h.handleListNotifications)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/initialize", h.handleAdminInitialize)
			r.Get("/plans", h.handleAdminListPlans)
			r.Get("/plans/deactivated", h.handleAdminListDeactivatedPlans)
			r.Get("/plans/active", h.handleAdminListActivePlans)
			r.Get("/plans/due", h.handleAdminListDuePlans)
			r.Get("/claims", h.handleAdminListClaims)
			r.Get("/kyc", h.handleAdminListKyc)
			r.Post("/kyc/{userID}/approve", h.handleAdminApproveKyc)
			r.Post("/kyc/{userID}/reject", h.handleAdminRejectKyc)
			r.Get("/audit", h.handleAdminListAudit)
			r.Get("/version", h.handleAdminVersion)
			r.Post("/version/migrate", h.handleAdminMigrate)
			r.Post("/version/upgrade", h.handleAdminUpgrade)
		})
	})

	return r
}
