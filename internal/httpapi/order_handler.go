package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alisharafi88/Store-api/internal/customer"
	"github.com/alisharafi88/Store-api/internal/middleware"
	"github.com/alisharafi88/Store-api/internal/order"
)

// CartConverter is the order conversion engine as the handler sees it.
type CartConverter interface {
	ConvertCartToOrder(ctx context.Context, cartID, userID string) (*order.Order, error)
}

// OrderEventsPublisher emits events for committed orders.
type OrderEventsPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *order.Order) error
}

type OrderHandler struct {
	orders    order.Repository
	customers customer.Repository
	converter CartConverter
	publisher OrderEventsPublisher
	logger    *log.Logger
}

func NewOrderHandler(orders order.Repository, customers customer.Repository, converter CartConverter, publisher OrderEventsPublisher, logger *log.Logger) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		customers: customers,
		converter: converter,
		publisher: publisher,
		logger:    logger,
	}
}

type orderView struct {
	ID         string          `json:"id"`
	Customer   string          `json:"customer"`
	CreatedAt  time.Time       `json:"datetime_created"`
	Status     order.Status    `json:"status"`
	Items      []order.Item    `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type orderCustomerView struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// adminOrderView is the administrator representation: the owning customer's
// contact details replace the bare customer id.
type adminOrderView struct {
	ID         string            `json:"id"`
	Customer   orderCustomerView `json:"customer"`
	CreatedAt  time.Time         `json:"datetime_created"`
	Status     order.Status      `json:"status"`
	Items      []order.Item      `json:"items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

func newOrderView(o *order.Order) orderView {
	return orderView{
		ID:         o.ID,
		Customer:   o.CustomerID,
		CreatedAt:  o.CreatedAt,
		Status:     o.Status,
		Items:      o.Items,
		TotalPrice: order.Total(o.Items),
	}
}

func newAdminOrderView(o *order.Order, c *customer.Customer) adminOrderView {
	return adminOrderView{
		ID: o.ID,
		Customer: orderCustomerView{
			ID:          c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Email:       c.Email,
			PhoneNumber: c.PhoneNumber,
		},
		CreatedAt:  o.CreatedAt,
		Status:     o.Status,
		Items:      o.Items,
		TotalPrice: order.Total(o.Items),
	}
}

// CreateOrder converts the cart named in the body into an order for the
// caller. The customer is resolved from the authenticated identity, never
// from the request body.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var body struct {
		CartID string `json:"cart_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.CartID == "" {
		writeError(w, http.StatusBadRequest, "missing cart_id")
		return
	}
	if _, err := uuid.Parse(body.CartID); err != nil {
		writeError(w, http.StatusBadRequest, "malformed cart_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.converter.ConvertCartToOrder(ctx, body.CartID, userID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrCartNotFound):
			writeError(w, http.StatusBadRequest, "there is no cart with this cart id")
		case errors.Is(err, order.ErrCartEmpty):
			writeError(w, http.StatusBadRequest, "your cart is empty")
		case errors.Is(err, order.ErrNoCustomer):
			writeError(w, http.StatusNotFound, "no customer profile for this user")
		case errors.Is(err, order.ErrConversionConflict):
			writeError(w, http.StatusConflict, "cart is being converted by another request")
		default:
			h.logger.Printf("convert cart %s: %v", body.CartID, err)
			writeError(w, http.StatusInternalServerError, "failed to create order")
		}
		return
	}

	// The order is durable at this point; a publish failure only delays
	// downstream consumers.
	if err := h.publisher.PublishOrderPlaced(ctx, o); err != nil {
		h.logger.Printf("publish OrderPlaced for %s: %v", o.ID, err)
	}

	writeJSON(w, http.StatusCreated, newOrderView(o))
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if middleware.IsAdmin(r.Context()) {
		h.listAllOrders(ctx, w)
		return
	}

	userID := middleware.GetUserID(r.Context())
	cust, err := h.customers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeJSON(w, http.StatusOK, []orderView{})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	orders, err := h.orders.ListByCustomer(ctx, cust.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) listAllOrders(ctx context.Context, w http.ResponseWriter) {
	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	views := make([]adminOrderView, 0, len(orders))
	for i := range orders {
		cust, err := h.customers.GetByID(ctx, orders[i].CustomerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load orders")
			return
		}
		views = append(views, newAdminOrderView(&orders[i], cust))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	if middleware.IsAdmin(r.Context()) {
		cust, err := h.customers.GetByID(ctx, o.CustomerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load order")
			return
		}
		writeJSON(w, http.StatusOK, newAdminOrderView(o, cust))
		return
	}

	userID := middleware.GetUserID(r.Context())
	cust, err := h.customers.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, customer.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if err != nil || cust.ID != o.CustomerID {
		// Owners only; everyone else sees the order as absent.
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, newOrderView(o))
}
