package httptransport

import (
	"encoding/json"
	"net/http"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/httputil"
)

func (h *Handler) handleRecordClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	planID, err := id.ParsePlanID(req.PlanID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Email == "" {
		httputil.WriteError(w, derrors.New(derrors.CodeValidation, "email is required"))
		return
	}

	record, err := h.claims.RecordClaim(ctx, planID, req.Email, req.ClaimCode)
	if err != nil {
		h.logDomainErr(ctx, "claim failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toClaimResponse(record))
}
