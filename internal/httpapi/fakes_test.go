package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/alisharafi88/Store-api/internal/cart"
	"github.com/alisharafi88/Store-api/internal/catalog"
	"github.com/alisharafi88/Store-api/internal/customer"
	"github.com/alisharafi88/Store-api/internal/order"
)

// Fake repositories back the handlers in tests. Each method delegates to a
// function field so a test only fills in what it exercises; an unset method
// panics, which points straight at the missing expectation.

type fakeCatalogRepo struct {
	listProducts  func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	getProduct    func(ctx context.Context, productID string) (*catalog.Product, error)
	createProduct func(ctx context.Context, p *catalog.Product) error
	updateProduct func(ctx context.Context, p *catalog.Product) error
	deleteProduct func(ctx context.Context, productID string) error

	listCategories func(ctx context.Context) ([]catalog.Category, error)
	getCategory    func(ctx context.Context, categoryID string) (*catalog.Category, error)
	createCategory func(ctx context.Context, c *catalog.Category) error
	deleteCategory func(ctx context.Context, categoryID string) error

	listComments  func(ctx context.Context, productID string) ([]catalog.Comment, error)
	createComment func(ctx context.Context, c *catalog.Comment) error
}

func (f *fakeCatalogRepo) ListProducts(ctx context.Context, flt catalog.ProductFilter) ([]catalog.Product, error) {
	return f.listProducts(ctx, flt)
}
func (f *fakeCatalogRepo) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	return f.getProduct(ctx, productID)
}
func (f *fakeCatalogRepo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return f.createProduct(ctx, p)
}
func (f *fakeCatalogRepo) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return f.updateProduct(ctx, p)
}
func (f *fakeCatalogRepo) DeleteProduct(ctx context.Context, productID string) error {
	return f.deleteProduct(ctx, productID)
}
func (f *fakeCatalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return f.listCategories(ctx)
}
func (f *fakeCatalogRepo) GetCategory(ctx context.Context, categoryID string) (*catalog.Category, error) {
	return f.getCategory(ctx, categoryID)
}
func (f *fakeCatalogRepo) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return f.createCategory(ctx, c)
}
func (f *fakeCatalogRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	return f.deleteCategory(ctx, categoryID)
}
func (f *fakeCatalogRepo) ListComments(ctx context.Context, productID string) ([]catalog.Comment, error) {
	return f.listComments(ctx, productID)
}
func (f *fakeCatalogRepo) CreateComment(ctx context.Context, c *catalog.Comment) error {
	return f.createComment(ctx, c)
}

type fakeCartRepo struct {
	create             func(ctx context.Context) (*cart.Cart, error)
	get                func(ctx context.Context, cartID string) (*cart.Cart, error)
	delete             func(ctx context.Context, cartID string) error
	addItem            func(ctx context.Context, cartID, productID string, quantity int) (*cart.Item, error)
	updateItemQuantity func(ctx context.Context, cartID, itemID string, quantity int) (*cart.Item, error)
	removeItem         func(ctx context.Context, cartID, itemID string) error
}

func (f *fakeCartRepo) Create(ctx context.Context) (*cart.Cart, error) { return f.create(ctx) }
func (f *fakeCartRepo) Get(ctx context.Context, cartID string) (*cart.Cart, error) {
	return f.get(ctx, cartID)
}
func (f *fakeCartRepo) Delete(ctx context.Context, cartID string) error {
	return f.delete(ctx, cartID)
}
func (f *fakeCartRepo) AddItem(ctx context.Context, cartID, productID string, quantity int) (*cart.Item, error) {
	return f.addItem(ctx, cartID, productID, quantity)
}
func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*cart.Item, error) {
	return f.updateItemQuantity(ctx, cartID, itemID, quantity)
}
func (f *fakeCartRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	return f.removeItem(ctx, cartID, itemID)
}

type fakeCustomerRepo struct {
	getByUserID func(ctx context.Context, userID string) (*customer.Customer, error)
	getByID     func(ctx context.Context, customerID string) (*customer.Customer, error)
	upsert      func(ctx context.Context, c *customer.Customer) error
	list        func(ctx context.Context) ([]customer.Customer, error)
}

func (f *fakeCustomerRepo) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	return f.getByUserID(ctx, userID)
}
func (f *fakeCustomerRepo) GetByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	return f.getByID(ctx, customerID)
}
func (f *fakeCustomerRepo) Upsert(ctx context.Context, c *customer.Customer) error {
	return f.upsert(ctx, c)
}
func (f *fakeCustomerRepo) List(ctx context.Context) ([]customer.Customer, error) {
	return f.list(ctx)
}

type fakeOrderRepo struct {
	getByID        func(ctx context.Context, orderID string) (*order.Order, error)
	listByCustomer func(ctx context.Context, customerID string) ([]order.Order, error)
	listAll        func(ctx context.Context) ([]order.Order, error)
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return f.getByID(ctx, orderID)
}
func (f *fakeOrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	return f.listByCustomer(ctx, customerID)
}
func (f *fakeOrderRepo) ListAll(ctx context.Context) ([]order.Order, error) {
	return f.listAll(ctx)
}

type fakeConverter struct {
	convert func(ctx context.Context, cartID, userID string) (*order.Order, error)
}

func (f *fakeConverter) ConvertCartToOrder(ctx context.Context, cartID, userID string) (*order.Order, error) {
	return f.convert(ctx, cartID, userID)
}

type fakePublisher struct {
	published []*order.Order
	err       error
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, o *order.Order) error {
	f.published = append(f.published, o)
	return f.err
}

func newTestRouter(deps RouterDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Publisher == nil {
		deps.Publisher = &fakePublisher{}
	}
	return NewRouter(deps)
}
