package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/httputil"
	"heirloom/pkg/requestcontext"
)

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.plans.Create(ctx, actorID, toCreateInput(req))
	if err != nil {
		h.logDomainErr(ctx, "create plan failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPlanResponse(p))
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.plans.ListByOwner(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleListDeactivatedPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.plans.ListDeactivatedByOwner(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleListDuePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.claims.DueForOwner(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleListClaimedPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.claims.ClaimedForOwner(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponses(plans))
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.plans.GetForOwner(ctx, requestcontext.ActorID(ctx), planID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponse(p))
}

func (h *Handler) handleAddBeneficiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req beneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.plans.AddBeneficiary(ctx, requestcontext.ActorID(ctx), planID, req.toInput())
	if err != nil {
		h.logDomainErr(ctx, "add beneficiary failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponse(p))
}

func (h *Handler) handleRemoveBeneficiary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeInvalidInput, "invalid beneficiary index"))
		return
	}

	p, err := h.plans.RemoveBeneficiary(ctx, requestcontext.ActorID(ctx), planID, index)
	if err != nil {
		h.logDomainErr(ctx, "remove beneficiary failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponse(p))
}

func (h *Handler) handleDeactivatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.plans.Deactivate(ctx, requestcontext.ActorID(ctx), planID)
	if err != nil {
		h.logDomainErr(ctx, "deactivate plan failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPlanResponse(p))
}

func (h *Handler) handleListPlanClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, err := planIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.claims.ListForPlan(ctx, requestcontext.ActorID(ctx), planID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimResponses(records))
}

func planIDParam(r *http.Request) (id.PlanID, error) {
	return id.ParsePlanID(chi.URLParam(r, "planID"))
}

// logDomainErr records failed mutations at the transport edge. Expected
// domain rejections log at info; anything internal logs as an error.
func (h *Handler) logDomainErr(ctx context.Context, msg string, err error) {
	if derrors.HasCode(err, derrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"reason", derrors.MessageOf(err),
	)
}
