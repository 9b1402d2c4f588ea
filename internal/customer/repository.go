package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Customer, error)
	GetByID(ctx context.Context, customerID string) (*Customer, error)
	Upsert(ctx context.Context, c *Customer) error
	List(ctx context.Context) ([]Customer, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByUserID(ctx context.Context, userID string) (*Customer, error) {
	return r.get(ctx, `WHERE user_id = $1`, userID)
}

func (r *repo) GetByID(ctx context.Context, customerID string) (*Customer, error) {
	return r.get(ctx, `WHERE id = $1`, customerID)
}

func (r *repo) get(ctx context.Context, where string, arg any) (*Customer, error) {
	var c Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, email, phone_number, birth_date
         FROM customers `+where,
		arg,
	).Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.BirthDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}

// Upsert creates the profile for a user id on first write and updates it
// afterwards, in a single statement.
func (r *repo) Upsert(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customers (id, user_id, first_name, last_name, email, phone_number, birth_date)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (user_id) DO UPDATE SET
             first_name = EXCLUDED.first_name,
             last_name = EXCLUDED.last_name,
             email = EXCLUDED.email,
             phone_number = EXCLUDED.phone_number,
             birth_date = EXCLUDED.birth_date
         RETURNING id`,
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.BirthDate,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (r *repo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, first_name, last_name, email, phone_number, birth_date
         FROM customers ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.BirthDate); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return customers, nil
}
