package httptransport

import (
	"time"

	"heirloom/internal/claim"
	"heirloom/internal/kyc"
	"heirloom/internal/plan"
)

type beneficiaryRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	ClaimCode    uint32 `json:"claim_code"`
	BankAccount  string `json:"bank_account"`
	AllocationBp uint32 `json:"allocation_bp"`
}

func (b beneficiaryRequest) toInput() plan.BeneficiaryInput {
	return plan.BeneficiaryInput{
		FullName:     b.FullName,
		Email:        b.Email,
		ClaimCode:    b.ClaimCode,
		BankAccount:  b.BankAccount,
		AllocationBp: b.AllocationBp,
	}
}

type createPlanRequest struct {
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	TotalAmount        int64                `json:"total_amount"`
	Asset              string               `json:"asset"`
	DistributionMethod string               `json:"distribution_method"`
	Beneficiaries      []beneficiaryRequest `json:"beneficiaries"`
}

func toCreateInput(req createPlanRequest) plan.CreateInput {
	beneficiaries := make([]plan.BeneficiaryInput, len(req.Beneficiaries))
	for i, b := range req.Beneficiaries {
		beneficiaries[i] = b.toInput()
	}
	return plan.CreateInput{
		Title:              req.Title,
		Description:        req.Description,
		TotalAmount:        req.TotalAmount,
		Asset:              req.Asset,
		DistributionMethod: req.DistributionMethod,
		Beneficiaries:      beneficiaries,
	}
}

// beneficiaryResponse exposes only the share; the stored identity fields
// are one-way digests and the bank account never leaves the backend.
type beneficiaryResponse struct {
	Index        int    `json:"index"`
	AllocationBp uint32 `json:"allocation_bp"`
}

type planResponse struct {
	ID                 string                `json:"id"`
	OwnerID            string                `json:"owner_id"`
	Title              string                `json:"title"`
	Description        string                `json:"description,omitempty"`
	TotalAmount        int64                 `json:"total_amount"`
	Asset              string                `json:"asset"`
	DistributionMethod string                `json:"distribution_method"`
	Beneficiaries      []beneficiaryResponse `json:"beneficiaries"`
	TotalAllocationBp  uint32                `json:"total_allocation_bp"`
	Status             string                `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
}

func toPlanResponse(p *plan.Plan) planResponse {
	beneficiaries := make([]beneficiaryResponse, len(p.Beneficiaries))
	for i, b := range p.Beneficiaries {
		beneficiaries[i] = beneficiaryResponse{Index: i, AllocationBp: b.AllocationBp}
	}
	return planResponse{
		ID:                 p.ID.String(),
		OwnerID:            p.OwnerID.String(),
		Title:              p.Title,
		Description:        p.Description,
		TotalAmount:        p.TotalAmount,
		Asset:              p.Asset.String(),
		DistributionMethod: p.DistributionMethod.String(),
		Beneficiaries:      beneficiaries,
		TotalAllocationBp:  p.TotalAllocationBp,
		Status:             string(p.Status),
		CreatedAt:          p.CreatedAt,
	}
}

func toPlanResponses(plans []plan.Plan) []planResponse {
	out := make([]planResponse, len(plans))
	for i := range plans {
		out[i] = toPlanResponse(&plans[i])
	}
	return out
}

type recordClaimRequest struct {
	PlanID    string `json:"plan_id"`
	Email     string `json:"email"`
	ClaimCode uint32 `json:"claim_code"`
}

type claimResponse struct {
	Key              string    `json:"key"`
	PlanID           string    `json:"plan_id"`
	BeneficiaryIndex int       `json:"beneficiary_index"`
	ClaimedAt        time.Time `json:"claimed_at"`
}

func toClaimResponse(r *claim.Record) claimResponse {
	return claimResponse{
		Key:              r.Key.String(),
		PlanID:           r.PlanID.String(),
		BeneficiaryIndex: r.BeneficiaryIndex,
		ClaimedAt:        r.ClaimedAt,
	}
}

func toClaimResponses(records []claim.Record) []claimResponse {
	out := make([]claimResponse, len(records))
	for i := range records {
		out[i] = toClaimResponse(&records[i])
	}
	return out
}

type kycStatusResponse struct {
	UserID      string     `json:"user_id"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Approved    bool       `json:"approved"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	Rejected    bool       `json:"rejected"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

func toKycResponse(st *kyc.Status) kycStatusResponse {
	return kycStatusResponse{
		UserID:      st.UserID.String(),
		Submitted:   st.Submitted,
		SubmittedAt: optionalTime(st.SubmittedAt),
		Approved:    st.Approved,
		ApprovedAt:  optionalTime(st.ApprovedAt),
		Rejected:    st.Rejected,
		RejectedAt:  optionalTime(st.RejectedAt),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
