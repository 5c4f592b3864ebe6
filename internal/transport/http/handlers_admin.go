package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"heirloom/internal/audit"
	"heirloom/internal/kyc"
	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/httputil"
	"heirloom/pkg/requestcontext"
)

func (h *Handler) handleAdminInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.admin.Initialize(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.logDomainErr(ctx, "admin initialize failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"user_id":        record.UserID.String(),
		"initialized_at": record.InitializedAt,
	})
}

func (h *Handler) handleAdminListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.plans.ListAll(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleAdminListDeactivatedPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.plans.ListDeactivatedAll(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleAdminListActivePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.plans.ListActive(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleAdminListDuePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.claims.DueForClaim(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleAdminListClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.claims.ListAll(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimResponses(records))
}

func (h *Handler) handleAdminListKyc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	statuses, err := h.kyc.ListStatuses(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]kycStatusResponse, len(statuses))
	for i := range statuses {
		out[i] = toKycResponse(&statuses[i])
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAdminApproveKyc(w http.ResponseWriter, r *http.Request) {
	h.moderateKyc(w, r, h.kyc.Approve)
}

func (h *Handler) handleAdminRejectKyc(w http.ResponseWriter, r *http.Request) {
	h.moderateKyc(w, r, h.kyc.Reject)
}

func (h *Handler) moderateKyc(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, adminID, userID id.UserID) (*kyc.Status, error)) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := apply(ctx, requestcontext.ActorID(ctx), userID)
	if err != nil {
		h.logDomainErr(ctx, "kyc moderation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKycResponse(status))
}

func (h *Handler) handleAdminListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, derrors.New(derrors.CodeInvalidInput, "limit must be an integer"))
			return
		}
		entries, err := h.auditTrail.ListRecent(ctx, actorID, limit)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toAuditResponses(entries))
		return
	}

	entries, err := h.auditTrail.ListAll(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditResponses(entries))
}

type auditEntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func toAuditResponses(entries []audit.Entry) []auditEntryResponse {
	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		actorID := ""
		if !e.ActorID.IsNil() {
			actorID = e.ActorID.String()
		}
		out[i] = auditEntryResponse{
			ID:         e.ID.String(),
			ActorID:    actorID,
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			Timestamp:  e.Timestamp,
		}
	}
	return out
}

func (h *Handler) handleAdminVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.versions.CurrentVersion(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint32{"version": version})
}

func (h *Handler) handleAdminMigrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	version, err := h.versions.Migrate(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.logDomainErr(ctx, "migrate failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint32{"version": version})
}

func (h *Handler) handleAdminUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CodeReference string `json:"code_reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	version, err := h.versions.Upgrade(ctx, requestcontext.ActorID(ctx), req.CodeReference)
	if err != nil {
		h.logDomainErr(ctx, "upgrade failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint32{"version": version})
}
