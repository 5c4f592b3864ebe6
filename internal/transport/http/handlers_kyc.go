package httptransport

import (
	"net/http"

	"heirloom/pkg/platform/httputil"
	"heirloom/pkg/requestcontext"
)

func (h *Handler) handleKycSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.kyc.Submit(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		h.logDomainErr(ctx, "kyc submit failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, toKycResponse(status))
}

func (h *Handler) handleKycStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.kyc.Get(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKycResponse(status))
}
