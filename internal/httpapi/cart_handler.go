package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/alisharafi88/Store-api/internal/cart"
)

type CartHandler struct {
	repo cart.Repository
}

func NewCartHandler(repo cart.Repository) *CartHandler {
	return &CartHandler{repo: repo}
}

type cartItemView struct {
	ID        string          `json:"id"`
	Product   cart.Product    `json:"product"`
	Quantity  int             `json:"quantity"`
	ItemPrice decimal.Decimal `json:"item_price"`
}

type cartView struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []cartItemView  `json:"items"`
	CartPrice decimal.Decimal `json:"cart_price"`
}

func newCartView(c *cart.Cart) cartView {
	v := cartView{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Items:     []cartItemView{},
		CartPrice: cart.Total(c.Items),
	}
	for _, it := range c.Items {
		v.Items = append(v.Items, cartItemView{
			ID:        it.ID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			ItemPrice: it.Price(),
		})
	}
	return v
}

func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.repo.Create(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create cart")
		return
	}

	writeJSON(w, http.StatusCreated, newCartView(c))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.repo.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, newCartView(c))
}

func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.Delete(ctx, cartID); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")

	var body struct {
		ProductID string `json:"product"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing product")
		return
	}
	if body.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.repo.AddItem(ctx, cartID, body.ProductID, body.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "cart not found")
		case errors.Is(err, cart.ErrProductNotFound):
			writeError(w, http.StatusBadRequest, "product not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	writeJSON(w, http.StatusCreated, cartItemView{
		ID:        it.ID,
		Product:   it.Product,
		Quantity:  it.Quantity,
		ItemPrice: it.Price(),
	})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	itemID := chi.URLParam(r, "itemID")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.repo.UpdateItemQuantity(ctx, cartID, itemID, body.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, cartItemView{
		ID:        it.ID,
		Product:   it.Product,
		Quantity:  it.Quantity,
		ItemPrice: it.Price(),
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	itemID := chi.URLParam(r, "itemID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.RemoveItem(ctx, cartID, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
