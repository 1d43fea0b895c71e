package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"contipay-be/internal/contipay"
	"contipay-be/internal/logger"
	"contipay-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxCallbackBody = 64 << 10

// ReferenceVerifier resolves a callback reference token to a transaction ID.
type ReferenceVerifier interface {
	Verify(token string) (int64, error)
}

type Handler struct {
	svc     Service
	refs    ReferenceVerifier
	cartURL string
}

func NewHandler(svc Service, refs ReferenceVerifier, cartURL string) *Handler {
	return &Handler{svc: svc, refs: refs, cartURL: cartURL}
}

// Routes mounts the gateway callbacks and, behind serviceAuth, the store
// backend endpoints. rateLimit runs after serviceAuth so it sees the
// authenticated subject.
func (h *Handler) Routes(r chi.Router, serviceAuth, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post(contipay.WebhookPath, h.Webhook)
	r.With(rateLimit).Get(contipay.RedirectPath, h.Redirect)

	r.Group(func(r chi.Router) {
		r.Use(serviceAuth, rateLimit)

		r.Post("/contipay/checkout", h.StartHosted)
		r.Post("/contipay/seamless", h.StartSeamless)
		r.Post("/contipay/orders/{orderID}/adjust", h.Adjust)
		r.Post("/contipay/carts/{cartID}/order", h.LinkOrder)
		r.Get("/contipay/carts/{cartID}/transaction", h.CartTransaction)
		r.Get("/contipay/orders/{orderID}/transaction", h.OrderTransaction)
	})
}

func (h *Handler) StartHosted(w http.ResponseWriter, r *http.Request) {
	var in hostedInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.StartHosted(r.Context(), in.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toView(tx))
}

func (h *Handler) StartSeamless(w http.ResponseWriter, r *http.Request) {
	var in seamlessInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.StartSeamless(r.Context(), in.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toView(tx))
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.URLParamInt64(r, "orderID")
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var in adjustInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Adjust(r.Context(), contipay.Order{ID: orderID, TotalPaid: in.TotalPaid})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toView(tx))
}

func (h *Handler) LinkOrder(w http.ResponseWriter, r *http.Request) {
	cartID, err := utils.URLParamInt64(r, "cartID")
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var in linkOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.OrderID <= 0 {
		utils.WriteJSONError(w, "orderId is required", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.LinkOrder(r.Context(), cartID, in.OrderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toView(tx))
}

func (h *Handler) CartTransaction(w http.ResponseWriter, r *http.Request) {
	cartID, err := utils.URLParamInt64(r, "cartID")
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.RefreshByCart(r.Context(), cartID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toView(tx))
}

func (h *Handler) OrderTransaction(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.URLParamInt64(r, "orderID")
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.RefreshByOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toView(tx))
}

// Webhook is called by ContiPay when a payment changes state. The body is
// not trusted: the state is re-read with a status inquiry.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	id, err := h.reference(r)
	if err != nil {
		log.Warn("webhook rejected", zap.Error(err))
		utils.WriteJSONError(w, ErrBadReference.Error(), http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		log.Warn("webhook body unreadable", zap.Int64("transaction_id", id), zap.Error(err))
	}
	log.Info("contipay webhook received",
		zap.Int64("transaction_id", id),
		zap.ByteString("body", body),
	)

	tx, err := h.svc.RefreshByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": tx.StatusCode.String()})
}

// Redirect is where the buyer lands after leaving the hosted page. It
// refreshes the attempt and sends the buyer back to the store cart.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	id, err := h.reference(r)
	if err != nil {
		log.Warn("redirect rejected", zap.Error(err))
		http.Redirect(w, r, h.cartURL, http.StatusFound)
		return
	}

	target := h.cartURL
	tx, err := h.svc.RefreshByID(r.Context(), id)
	if err != nil {
		log.Error("redirect refresh failed", zap.Int64("transaction_id", id), zap.Error(err))
	} else {
		target = withQuery(h.cartURL, "contipay_status", tx.StatusCode.String())
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) reference(r *http.Request) (int64, error) {
	token := r.URL.Query().Get("reference")
	if token == "" {
		return 0, ErrBadReference
	}
	return h.refs.Verify(token)
}

func withQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contipay.ErrTransactionNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrMissingMethod):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotSettled):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, contipay.ErrPayloadNotReady):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.FromCtx(r.Context()).Error("checkout request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
