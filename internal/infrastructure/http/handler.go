package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apppay "github.com/locksmith-pay/locksmith/internal/application/payment"
	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/lock"
)

type Handler struct {
	payments *apppay.Service
}

func NewHandler(payments *apppay.Service) *Handler {
	return &Handler{payments: payments}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/payments", h.handleProcessPayment)
	mux.HandleFunc("GET /api/payments/{paymentId}", h.handleGetPayment)
	mux.HandleFunc("POST /api/payments/{paymentId}/cancel", h.handleCancelPayment)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

type paymentRequest struct {
	UserID   int64  `json:"user_id"`
	OrderID  string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

type paymentResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderID   string    `json:"order_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(p *dompay.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		OrderID:   p.OrderID,
		Amount:    p.Amount.Amount.StringFixed(2),
		Currency:  p.Amount.Currency,
		Status:    string(p.Status),
		Method:    string(p.Method),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	amount, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.payments.ProcessPayment(r.Context(), apppay.Command{
		UserID:  req.UserID,
		OrderID: req.OrderID,
		Amount:  amount,
		Method:  dompay.Method(strings.ToUpper(strings.TrimSpace(req.Method))),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(result))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.payments.CancelPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func paymentID(r *http.Request) (int64, error) {
	raw := r.PathValue("paymentId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("payment id must be a positive integer")
	}
	return id, nil
}

func parseMoney(amount, currency string) (dompay.Money, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return dompay.Money{}, errors.Join(dompay.ErrValidation, errors.New("amount must be a decimal number"))
	}
	return dompay.NewMoney(value, currency)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dompay.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, dompay.ErrDuplicateOrder):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, dompay.ErrValidation),
		errors.Is(err, dompay.ErrIllegalTransition),
		errors.Is(err, dompay.ErrCurrencyMismatch):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, lock.ErrUnavailable):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, dompay.ErrGateway):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
