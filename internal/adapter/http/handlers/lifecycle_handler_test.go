package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mock_usecase "github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/handlers/mocks"
	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func lifecycleRouter(t *testing.T) (*gin.Engine, *mock_usecase.MockIEstimateUseCase, *mock_usecase.MockILifecycleUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	estimates := mock_usecase.NewMockIEstimateUseCase(ctrl)
	lifecycle := mock_usecase.NewMockILifecycleUseCase(ctrl)
	h := NewLifecycleHandler(estimates, lifecycle)

	r := gin.New()
	r.GET("/v1/public/estimates/:token", h.GetPublicEstimate)
	r.POST("/v1/public/estimates/:token/accept", h.AcceptEstimate)
	r.POST("/v1/webhooks/stripe", h.StripeWebhook)
	r.POST("/v1/estimates/:id/invoice", h.MaterializeInvoice)
	r.GET("/v1/invoices/:estimate_id", h.GetInvoice)
	return r, estimates, lifecycle
}

func TestLifecycleHandler_GetPublicEstimate(t *testing.T) {
	t.Run("unknown token maps to 404", func(t *testing.T) {
		r, estimates, _ := lifecycleRouter(t)
		estimates.EXPECT().GetBySharingToken(gomock.Any(), "nope").Return(entities.Estimate{}, usecase.ErrEstimateNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/public/estimates/nope", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("public view omits the sharing token", func(t *testing.T) {
		r, estimates, _ := lifecycleRouter(t)
		e := draftEstimate()
		e.Status = entities.EstimateStatusSent
		estimates.EXPECT().GetBySharingToken(gomock.Any(), e.SharingToken).Return(e, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/public/estimates/"+e.SharingToken, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if _, ok := got["sharing_token"]; ok {
			t.Fatal("public response must not expose the sharing token")
		}
		if _, ok := got["id"]; ok {
			t.Fatal("public response must not expose the internal id")
		}
	})
}

func TestLifecycleHandler_AcceptEstimate(t *testing.T) {
	t.Run("deposit required returns redirect url", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		e := draftEstimate()
		e.Status = entities.EstimateStatusSent
		lifecycle.EXPECT().AcceptBySharingToken(gomock.Any(), e.SharingToken).Return(usecase.AcceptResult{
			Estimate:    e,
			RedirectURL: "https://checkout.stripe.com/c/pay/cs_test_1",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/public/estimates/"+e.SharingToken+"/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if got["redirect_url"] != "https://checkout.stripe.com/c/pay/cs_test_1" {
			t.Fatalf("expected redirect url, got %v", got["redirect_url"])
		}
		if _, ok := got["invoice"]; ok {
			t.Fatal("no invoice expected while payment is pending")
		}
	})

	t.Run("zero deposit returns invoice synchronously", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		e := draftEstimate()
		e.Status = entities.EstimateStatusInvoiced
		inv := entities.Invoice{ID: "inv-1", InvoiceNumber: "INV-0001", EstimateID: e.ID, Total: 540, Status: entities.InvoiceStatusPending}
		lifecycle.EXPECT().AcceptBySharingToken(gomock.Any(), e.SharingToken).Return(usecase.AcceptResult{
			Estimate: e,
			Invoice:  &inv,
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/public/estimates/"+e.SharingToken+"/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got struct {
			Invoice *struct {
				InvoiceNumber string `json:"invoice_number"`
			} `json:"invoice"`
			RedirectURL string `json:"redirect_url"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if got.Invoice == nil || got.Invoice.InvoiceNumber != "INV-0001" {
			t.Fatalf("expected invoice INV-0001, got %+v", got.Invoice)
		}
		if got.RedirectURL != "" {
			t.Fatalf("no redirect expected for zero-deposit accept, got %q", got.RedirectURL)
		}
	})

	t.Run("wrong status maps to 409", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().AcceptBySharingToken(gomock.Any(), "tok").Return(usecase.AcceptResult{}, usecase.ErrInvalidTransition)

		req := httptest.NewRequest(http.MethodPost, "/v1/public/estimates/tok/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("gateway failure maps to 502", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().AcceptBySharingToken(gomock.Any(), "tok").Return(usecase.AcceptResult{}, usecase.ErrGateway)

		req := httptest.NewRequest(http.MethodPost, "/v1/public/estimates/tok/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
	})
}

func TestLifecycleHandler_StripeWebhook(t *testing.T) {
	t.Run("confirmation acked", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		e := draftEstimate()
		e.Status = entities.EstimateStatusInvoiced
		lifecycle.EXPECT().PaymentConfirmed(gomock.Any(), gomock.Any(), "sig").Return(e, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewBufferString(`{"type":"checkout.session.completed"}`))
		req.Header.Set("Stripe-Signature", "sig")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("bad signature maps to 400", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().PaymentConfirmed(gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.Estimate{}, usecase.ErrInvalidWebhook)

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("amount mismatch still acked", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().PaymentConfirmed(gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.Estimate{}, usecase.ErrPaymentMismatch)

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("storage failure maps to 500 so the provider retries", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().PaymentConfirmed(gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.Estimate{}, errors.New("dynamodb unavailable"))

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}

func TestLifecycleHandler_MaterializeInvoice(t *testing.T) {
	t.Run("accepted estimate is invoiced", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		inv := entities.Invoice{ID: "inv-1", InvoiceNumber: "INV-0001", EstimateID: "est-1", Total: 405, Status: entities.InvoiceStatusPending}
		lifecycle.EXPECT().Materialize(gomock.Any(), "est-1").Return(inv, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/estimates/est-1/invoice", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("draft estimate maps to 409", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().Materialize(gomock.Any(), "est-1").Return(entities.Invoice{}, usecase.ErrInvalidTransition)

		req := httptest.NewRequest(http.MethodPost, "/v1/estimates/est-1/invoice", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestLifecycleHandler_GetInvoice(t *testing.T) {
	t.Run("missing invoice maps to 404", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		lifecycle.EXPECT().GetInvoiceByEstimateID(gomock.Any(), "est-1").Return(entities.Invoice{}, usecase.ErrInvoiceNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/invoices/est-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("found returns the invoice", func(t *testing.T) {
		r, _, lifecycle := lifecycleRouter(t)
		inv := entities.Invoice{ID: "inv-1", InvoiceNumber: "INV-0001", EstimateID: "est-1", Total: 405, Status: entities.InvoiceStatusPending}
		lifecycle.EXPECT().GetInvoiceByEstimateID(gomock.Any(), "est-1").Return(inv, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/invoices/est-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if got["invoice_number"] != "INV-0001" {
			t.Fatalf("expected INV-0001, got %v", got["invoice_number"])
		}
	})
}
