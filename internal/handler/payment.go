package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
)

type PaymentHandler struct {
	payments  *service.PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		validator: validator.New(),
	}
}

// Record applies a payment to an installment (staff only).
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathID(r, "installmentId")
	if !ok {
		response.BadRequest(w, "invalid installment id", nil)
		return
	}

	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	inst, err := h.payments.RecordPayment(r.Context(), installmentID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, inst)
}

// Delete removes an installment, rolling its received amount back out of the
// parent loan (staff only).
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathID(r, "installmentId")
	if !ok {
		response.BadRequest(w, "invalid installment id", nil)
		return
	}

	if err := h.payments.DeleteInstallment(r.Context(), installmentID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.NoContent(w)
}

// AddAttachment stores proof-of-payment metadata (staff only).
func (h *PaymentHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathID(r, "installmentId")
	if !ok {
		response.BadRequest(w, "invalid installment id", nil)
		return
	}

	var req domain.AddAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	attachment, err := h.payments.AddAttachment(r.Context(), installmentID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, attachment)
}

// ListAttachments lists proof-of-payment metadata for an installment.
func (h *PaymentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathID(r, "installmentId")
	if !ok {
		response.BadRequest(w, "invalid installment id", nil)
		return
	}

	attachments, err := h.payments.ListAttachments(r.Context(), installmentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, attachments)
}
