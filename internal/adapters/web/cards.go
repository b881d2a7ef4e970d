package web

import (
	"net/http"
	"strconv"
	"time"

	"pos-backend/internal/app"
)

// apiListCards handles GET /api/cards.
func (h *Handler) apiListCards(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCards(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Cards)
}

// apiCreateCard handles POST /api/cards.
// Body: { name, closing_day }
func (h *Handler) apiCreateCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		ClosingDay int    `json:"closing_day"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateCard(r.Context(), app.CreateCardRequest{
		Name:       body.Name,
		ClosingDay: body.ClosingDay,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Card)
}

// apiCardStatement handles GET /api/cards/{id}/statement?cycle_date=YYYY-MM-DD.
// Without cycle_date the card's next closing date from today is used.
func (h *Handler) apiCardStatement(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid card id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var cycleDate time.Time
	if raw := r.URL.Query().Get("cycle_date"); raw != "" {
		cycleDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, r, "invalid cycle_date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	statement, err := h.svc.GetCardStatement(r.Context(), id, cycleDate)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, statement)
}

// apiCardPurchases handles GET /api/cards/{id}/purchases?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) apiCardPurchases(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid card id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}

	result, err := h.svc.GetPurchaseGroups(r.Context(), id, from, to)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Groups)
}

// apiMonthlySpend handles GET /api/cards/{id}/monthly-spend?year=2026.
func (h *Handler) apiMonthlySpend(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid card id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "invalid year", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.GetMonthlySpend(r.Context(), id, year)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// apiBillingCycle handles GET /api/cards/{id}/billing-cycle?date=YYYY-MM-DD.
// Without date today's date is used.
func (h *Handler) apiBillingCycle(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid card id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var txDate time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		txDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, r, "invalid date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.ComputeBillingCycle(r.Context(), id, txDate)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, result)
}

// queryDate parses an optional YYYY-MM-DD query parameter. A missing parameter
// yields the zero time. Returns false after writing a 400 on a malformed value.
func queryDate(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, r, "invalid "+key+", want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return time.Time{}, false
	}
	return d, true
}
