package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrProductInUse is returned when deleting a product that appears in an order.
	ErrProductInUse = errors.New("product referenced by order items")
	// ErrCategoryInUse is returned when deleting a category that still has products.
	ErrCategoryInUse = errors.New("category still has products")
)

// ProductFilter narrows product listings. Zero values mean no filtering.
type ProductFilter struct {
	CategoryID string
	Search     string
}

type Repository interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, productID string) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, categoryID string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, categoryID string) error

	ListComments(ctx context.Context, productID string) ([]Comment, error)
	CreateComment(ctx context.Context, c *Comment) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	query := `SELECT id, name, slug, description, unit_price, inventory, COALESCE(category_id::text, ''), created_at
         FROM products WHERE 1=1`
	var args []any
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return products, nil
}

func (r *repo) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description, unit_price, inventory, COALESCE(category_id::text, ''), created_at
         FROM products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CategoryID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

func (r *repo) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Slug = Slugify(p.Name)

	var categoryID any
	if p.CategoryID != "" {
		categoryID = p.CategoryID
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (id, name, slug, description, unit_price, inventory, category_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING created_at`,
		p.ID, p.Name, p.Slug, p.Description, p.UnitPrice, p.Inventory, categoryID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repo) UpdateProduct(ctx context.Context, p *Product) error {
	p.Slug = Slugify(p.Name)

	var categoryID any
	if p.CategoryID != "" {
		categoryID = p.CategoryID
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE products
         SET name = $2, slug = $3, description = $4, unit_price = $5, inventory = $6, category_id = $7
         WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.UnitPrice, p.Inventory, categoryID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct refuses to delete a product that is part of any order, so
// order lines keep a resolvable product reference.
func (r *repo) DeleteProduct(ctx context.Context, productID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var ordered bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`,
		productID,
	).Scan(&ordered)
	if err != nil {
		return fmt.Errorf("check order items: %w", err)
	}
	if ordered {
		return ErrProductInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.description, COUNT(p.id), c.created_at
         FROM categories c
         LEFT JOIN products p ON p.category_id = c.id
         GROUP BY c.id
         ORDER BY c.title`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.NumOfProducts, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return categories, nil
}

func (r *repo) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		`SELECT c.id, c.title, c.description, COUNT(p.id), c.created_at
         FROM categories c
         LEFT JOIN products p ON p.category_id = c.id
         WHERE c.id = $1
         GROUP BY c.id`,
		categoryID,
	).Scan(&c.ID, &c.Title, &c.Description, &c.NumOfProducts, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

func (r *repo) CreateCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, title, description) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.Title, c.Description,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *repo) DeleteCategory(ctx context.Context, categoryID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inUse bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`,
		categoryID,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *repo) ListComments(ctx context.Context, productID string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, name, body, created_at
         FROM comments WHERE product_id = $1 ORDER BY created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return comments, nil
}

func (r *repo) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (id, product_id, name, body) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		c.ID, c.ProductID, c.Name, c.Body,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}
