package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	response "github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/dto/response"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase"
	"github.com/gnosis118/paper-n-print-sub000/pkg"

	"github.com/gin-gonic/gin"
)

const stripeSignatureHeader = "Stripe-Signature"

// LifecycleHandler handles the customer-facing share routes, the payment
// webhook, and invoice retrieval.

type LifecycleHandler struct {
	estimates usecase.IEstimateUseCase
	lifecycle usecase.ILifecycleUseCase
}

func NewLifecycleHandler(estimates usecase.IEstimateUseCase, lifecycle usecase.ILifecycleUseCase) *LifecycleHandler {
	return &LifecycleHandler{estimates: estimates, lifecycle: lifecycle}
}

// GetPublicEstimate serves the estimate behind a sharing token. Only the
// estimate owning the token is reachable; the response never echoes the
// token back.
func (h *LifecycleHandler) GetPublicEstimate(c *gin.Context) {
	estimate, err := h.estimates.GetBySharingToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		appErr := mapEstimateError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromEstimatePublic(estimate))
}

// AcceptEstimate records customer acceptance. With a deposit configured it
// answers with a checkout redirect URL and leaves the status untouched until
// the webhook confirms payment; with no deposit it accepts and invoices
// synchronously.
func (h *LifecycleHandler) AcceptEstimate(c *gin.Context) {
	result, err := h.lifecycle.AcceptBySharingToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		appErr := mapLifecycleError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromAcceptResult(result))
}

// StripeWebhook receives payment confirmations. Duplicate deliveries and
// amount mismatches are acknowledged with 200 so the provider stops
// retrying; only malformed or badly signed payloads get a 400.
func (h *LifecycleHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		appErr := pkg.NewDomainErrorSimple("INVALID_WEBHOOK", "Unable to read webhook payload", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	_, err = h.lifecycle.PaymentConfirmed(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidWebhook) {
			appErr := pkg.NewDomainErrorSimple("INVALID_WEBHOOK", "Invalid webhook payload", http.StatusBadRequest)
			c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
			return
		}
		if errors.Is(err, usecase.ErrPaymentMismatch) {
			// Already alerted in the use case. ACK so the provider does
			// not retry a payload we will never accept.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("[lifecycle][handler] webhook processing failed error=%v", err)
		appErr := pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// MaterializeInvoice is the recovery path: it converts an accepted estimate
// into its invoice. Safe to call repeatedly; an already-invoiced estimate
// returns the existing invoice.
func (h *LifecycleHandler) MaterializeInvoice(c *gin.Context) {
	invoice, err := h.lifecycle.Materialize(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapLifecycleError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromInvoice(invoice))
}

func (h *LifecycleHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.lifecycle.GetInvoiceByEstimateID(c.Request.Context(), c.Param("estimate_id"))
	if err != nil {
		appErr := mapLifecycleError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromInvoice(invoice))
}

func mapLifecycleError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidEstimateID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrEstimateNotFound), errors.Is(err, usecase.ErrInvalidSharingToken):
		return pkg.NewDomainErrorSimple("ESTIMATE_NOT_FOUND", "Estimate not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvoiceNotFound):
		return pkg.NewDomainErrorSimple("INVOICE_NOT_FOUND", "Invoice not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Estimate status does not allow this operation", http.StatusConflict)
	case errors.Is(err, usecase.ErrGateway):
		return pkg.NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment provider unavailable", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
