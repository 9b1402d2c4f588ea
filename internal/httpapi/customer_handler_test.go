package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisharafi88/Store-api/internal/customer"
	"github.com/alisharafi88/Store-api/internal/middleware"
)

func TestMe_NoProfile(t *testing.T) {
	customers := &fakeCustomerRepo{
		getByUserID: func(context.Context, string) (*customer.Customer, error) {
			return nil, customer.ErrNotFound
		},
	}
	router := newTestRouter(RouterDeps{Customers: customers})

	req := httptest.NewRequest(http.MethodGet, "/api/customers/me", nil)
	req.Header.Set(middleware.HeaderUserID, testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMe_UpsertsForCaller(t *testing.T) {
	customers := &fakeCustomerRepo{
		upsert: func(_ context.Context, c *customer.Customer) error {
			// the profile is always bound to the authenticated user
			assert.Equal(t, testUserID, c.UserID)
			c.ID = testCustomerID
			return nil
		},
	}
	router := newTestRouter(RouterDeps{Customers: customers})

	req := httptest.NewRequest(http.MethodPut, "/api/customers/me",
		strings.NewReader(`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`))
	req.Header.Set(middleware.HeaderUserID, testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got customer.Customer
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, testCustomerID, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestListCustomers_AdminOnly(t *testing.T) {
	router := newTestRouter(RouterDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/customers/", nil)
	req.Header.Set(middleware.HeaderUserID, testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
