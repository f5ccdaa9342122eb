package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
)

type LoanHandler struct {
	loans     *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(loans *service.LoanService) *LoanHandler {
	return &LoanHandler{
		loans:     loans,
		validator: validator.New(),
	}
}

// Create originates a loan for a client (staff only).
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "clientId")
	if !ok {
		response.BadRequest(w, "invalid client id", nil)
		return
	}

	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	resp, err := h.loans.CreateLoan(r.Context(), clientID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, resp)
}

// Detail returns a loan with installments and derived summary (staff).
func (h *LoanHandler) Detail(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(r, "loanId")
	if !ok {
		response.BadRequest(w, "invalid loan id", nil)
		return
	}

	detail, err := h.loans.GetLoanDetail(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, detail)
}

// Delete removes a loan and its installments (staff only).
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(r, "loanId")
	if !ok {
		response.BadRequest(w, "invalid loan id", nil)
		return
	}

	if err := h.loans.DeleteLoan(r.Context(), loanID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.NoContent(w)
}

// ClientLoans lists loans of one client with summaries (staff).
func (h *LoanHandler) ClientLoans(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "clientId")
	if !ok {
		response.BadRequest(w, "invalid client id", nil)
		return
	}

	overviews, err := h.loans.ListClientLoans(r.Context(), clientID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, overviews)
}

// MyLoans lists the signed-in client's loans with summaries.
func (h *LoanHandler) MyLoans(w http.ResponseWriter, r *http.Request) {
	clientID, ok := SubjectID(r.Context())
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	overviews, err := h.loans.ListClientLoans(r.Context(), clientID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, overviews)
}

// MyLoanDetail returns one of the signed-in client's loans. Ownership is
// checked against the token subject.
func (h *LoanHandler) MyLoanDetail(w http.ResponseWriter, r *http.Request) {
	clientID, ok := SubjectID(r.Context())
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	loanID, ok := pathID(r, "loanId")
	if !ok {
		response.BadRequest(w, "invalid loan id", nil)
		return
	}

	detail, err := h.loans.GetLoanDetail(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}
	if detail.Loan.ClientID != clientID {
		response.Forbidden(w, "loan belongs to another client")
		return
	}

	response.Success(w, detail)
}

// Dashboard returns the signed-in client's aggregated position.
func (h *LoanHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	clientID, ok := SubjectID(r.Context())
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	resp, err := h.loans.Dashboard(r.Context(), clientID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, resp)
}
