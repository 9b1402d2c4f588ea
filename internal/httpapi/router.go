package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/alisharafi88/Store-api/internal/cart"
	"github.com/alisharafi88/Store-api/internal/catalog"
	"github.com/alisharafi88/Store-api/internal/customer"
	"github.com/alisharafi88/Store-api/internal/middleware"
	"github.com/alisharafi88/Store-api/internal/order"
)

type RouterDeps struct {
	Catalog   catalog.Repository
	Carts     cart.Repository
	Customers customer.Repository
	Orders    order.Repository
	Converter CartConverter
	Publisher OrderEventsPublisher
	Logger    *log.Logger

	CORSAllowOrigins []string
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.CORS(deps.CORSAllowOrigins))
	r.Use(middleware.Identity)

	r.Get("/health", healthHandler)

	products := NewProductHandler(deps.Catalog)
	categories := NewCategoryHandler(deps.Catalog)
	comments := NewCommentHandler(deps.Catalog)
	carts := NewCartHandler(deps.Carts)
	customers := NewCustomerHandler(deps.Customers)
	orders := NewOrderHandler(deps.Orders, deps.Customers, deps.Converter, deps.Publisher, deps.Logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", products.ListProducts)
		r.Get("/{productID}", products.GetProduct)
		r.Get("/{productID}/comments", comments.ListComments)
		r.Post("/{productID}/comments", comments.CreateComment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser, middleware.RequireAdmin)
			r.Post("/", products.CreateProduct)
			r.Patch("/{productID}", products.UpdateProduct)
			r.Delete("/{productID}", products.DeleteProduct)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categories.ListCategories)
		r.Get("/{categoryID}", categories.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser, middleware.RequireAdmin)
			r.Post("/", categories.CreateCategory)
			r.Delete("/{categoryID}", categories.DeleteCategory)
		})
	})

	// Carts are addressed by their opaque id, not by identity: a cart can be
	// built before the shopper logs in.
	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", carts.CreateCart)
		r.Get("/{cartID}", carts.GetCart)
		r.Delete("/{cartID}", carts.DeleteCart)
		r.Post("/{cartID}/items", carts.AddItem)
		r.Patch("/{cartID}/items/{itemID}", carts.UpdateItem)
		r.Delete("/{cartID}/items/{itemID}", carts.RemoveItem)
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/me", customers.Me)
			r.Put("/me", customers.UpdateMe)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser, middleware.RequireAdmin)
			r.Get("/", customers.ListCustomers)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/", orders.CreateOrder)
		r.Get("/", orders.ListOrders)
		r.Get("/{orderID}", orders.GetOrder)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "store-api",
	})
}
