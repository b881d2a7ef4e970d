package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-backend/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// All endpoints: 1 MB body limit to prevent unbounded request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Products ──────────────────────────────────────────────────────────
		r.Get("/api/products", h.apiListProducts)
		r.Post("/api/products", h.apiCreateProduct)
		r.Get("/api/products/{id}", h.apiGetProduct)
		r.Get("/api/products/{id}/lots", h.apiGetLots)

		// ── Stock ─────────────────────────────────────────────────────────────
		r.Get("/api/stock", h.apiStockLevels)
		r.Get("/api/stock/valuation", h.apiStockValuation)
		r.Post("/api/stock/receive", h.apiReceiveStock)
		r.Post("/api/stock/allocate", h.apiAllocateStock)

		// ── Cards ─────────────────────────────────────────────────────────────
		r.Get("/api/cards", h.apiListCards)
		r.Post("/api/cards", h.apiCreateCard)
		r.Get("/api/cards/{id}/statement", h.apiCardStatement)
		r.Get("/api/cards/{id}/purchases", h.apiCardPurchases)
		r.Get("/api/cards/{id}/monthly-spend", h.apiMonthlySpend)
		r.Get("/api/cards/{id}/billing-cycle", h.apiBillingCycle)

		// ── Transactions ──────────────────────────────────────────────────────
		r.Get("/api/transactions", h.apiListTransactions)
		r.Post("/api/transactions", h.apiRegisterTransaction)
		r.Get("/api/transactions/{id}", h.apiGetTransaction)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlUUID extracts and parses the {id} URL parameter.
func urlUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
