package web

import (
	"errors"
	"net/http"

	"pos-backend/internal/app"
	"pos-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// apiListProducts handles GET /api/products.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Products)
}

// apiGetProduct handles GET /api/products/{id}.
func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, result.Product)
}

// apiCreateProduct handles POST /api/products.
// Body: { name, barcode?, category?, sale_price?, min_stock? }
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Barcode   *string `json:"barcode"`
		Name      string  `json:"name"`
		Category  string  `json:"category"`
		SalePrice string  `json:"sale_price"`
		MinStock  int     `json:"min_stock"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeError(w, r, "name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	salePrice := decimal.Zero
	if body.SalePrice != "" {
		var err error
		salePrice, err = decimal.NewFromString(body.SalePrice)
		if err != nil || salePrice.IsNegative() {
			writeError(w, r, "invalid sale_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		Barcode:   body.Barcode,
		Name:      body.Name,
		Category:  body.Category,
		SalePrice: salePrice,
		MinStock:  body.MinStock,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Product)
}

// apiGetLots handles GET /api/products/{id}/lots.
func (h *Handler) apiGetLots(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetLots(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Lots)
}

// apiStockLevels handles GET /api/stock.
func (h *Handler) apiStockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Levels)
}

// apiStockValuation handles GET /api/stock/valuation.
func (h *Handler) apiStockValuation(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockValuation(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	type response struct {
		Lines      []core.StockValuationLine `json:"lines"`
		TotalUnits int                       `json:"total_units"`
		TotalValue decimal.Decimal           `json:"total_value"`
	}
	writeJSON(w, response{Lines: result.Lines, TotalUnits: result.TotalUnits, TotalValue: result.TotalValue})
}

// apiReceiveStock handles POST /api/stock/receive.
// Body: { product_id, qty, unit_cost }
func (h *Handler) apiReceiveStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
		UnitCost  string `json:"unit_cost"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(w, r, "invalid product_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.Qty <= 0 {
		writeError(w, r, "qty must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	unitCost, err := decimal.NewFromString(body.UnitCost)
	if err != nil || unitCost.IsNegative() {
		writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ReceiveStock(r.Context(), app.ReceiveStockRequest{
		ProductID: productID,
		Qty:       body.Qty,
		UnitCost:  unitCost,
	})
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiAllocateStock handles POST /api/stock/allocate.
// Body: { product_id, qty }
func (h *Handler) apiAllocateStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(w, r, "invalid product_id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if body.Qty <= 0 {
		writeError(w, r, "qty must be positive", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AllocateStock(r.Context(), productID, body.Qty)
	if err != nil {
		var insufficient *core.InsufficientStockError
		if errors.As(err, &insufficient) {
			writeError(w, r, insufficient.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
			return
		}
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Product)
}
