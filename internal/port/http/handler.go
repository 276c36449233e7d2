package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHeader selects the cart a request works on. Requests without it share the default cart.
const SessionHeader = "X-Session-ID"

type cartResponse struct {
	Items entity.Cart `json:"items"`
	Error string      `json:"error,omitempty"`
}

type updateAmountRequest struct {
	Amount *int `json:"amount"`
}

// CartHandler exposes the session carts over HTTP.
type CartHandler struct {
	sessions *service.SessionRegistry
	kv       repository.KVStore
	log      logger.Logger
}

func NewCartHandler(sessions *service.SessionRegistry, kv repository.KVStore, log logger.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, kv: kv, log: log}
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(store *service.CartStore) error { return nil })
}

func (h *CartHandler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(store *service.CartStore) error {
		return store.AddProduct(r.Context(), productID)
	})
}

func (h *CartHandler) HandleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(store *service.CartStore) error {
		return store.RemoveProduct(r.Context(), productID)
	})
}

func (h *CartHandler) HandleUpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req updateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.log.Warnf("Invalid request body for UpdateProductAmount: %v", err)
		h.writeJSON(w, http.StatusBadRequest, cartResponse{Items: entity.NewCart(), Error: "invalid request body"})
		return
	}
	h.run(w, r, func(store *service.CartStore) error {
		return store.UpdateProductAmount(r.Context(), service.UpdateProductAmount{ProductID: productID, Amount: *req.Amount})
	})
}

func (h *CartHandler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(store *service.CartStore) error {
		return store.Clear(r.Context())
	})
}

func (h *CartHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.kv.Ping(r.Context()); err != nil {
		h.log.Errorf("Health check failed: %v", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// run executes op against the request's session and answers with the cart as it is afterwards.
func (h *CartHandler) run(w http.ResponseWriter, r *http.Request, op func(store *service.CartStore) error) {
	var items entity.Cart
	err := h.sessions.Do(r.Context(), r.Header.Get(SessionHeader), func(store *service.CartStore) error {
		opErr := op(store)
		items = store.Cart()
		return opErr
	})
	if items == nil {
		items = entity.NewCart()
	}
	if err != nil {
		h.writeJSON(w, statusFor(err), cartResponse{Items: items, Error: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{Items: items})
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product id %q", raw)
		h.writeJSON(w, http.StatusBadRequest, cartResponse{Items: entity.NewCart(), Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransportFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPersistFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
