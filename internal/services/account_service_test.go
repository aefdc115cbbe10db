package services

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/ledgerpath/backend/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountRouter(as *AccountService) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/", as.Root)
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", as.CreateAccount)
		r.Get("/", as.ListAccounts)
		r.Get("/{accountId}", as.GetAccount)
		r.Put("/{accountId}", as.UpdateAccount)
		r.Delete("/{accountId}", as.DeleteAccount)
	})
	return r
}

func TestAccountService_CreateAccount(t *testing.T) {
	t.Run("successful create", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery("INSERT INTO accounts").
			WithArgs("savings", "rainy day").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		as := NewAccountService(db, testLogger())

		payload := `{"name": "savings", "description": "rainy day"}`
		req := httptest.NewRequest("POST", "/accounts", strings.NewReader(payload))
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var account models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
		assert.Equal(t, int64(1), account.ID)
		assert.Equal(t, "savings", account.Name)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery("INSERT INTO accounts").
			WithArgs("savings", "").
			WillReturnError(&pq.Error{Code: "23505"})

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("POST", "/accounts", strings.NewReader(`{"name": "savings"}`))
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		as := NewAccountService(nil, testLogger())

		req := httptest.NewRequest("POST", "/accounts", strings.NewReader(`{"description": "no name"}`))
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "Name")
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery(`SELECT (.+) FROM accounts ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(1, "savings", "rainy day").
			AddRow(2, "checking", ""))

	as := NewAccountService(db, testLogger())

	req := httptest.NewRequest("GET", "/accounts", nil)
	w := httptest.NewRecorder()
	newAccountRouter(as).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var accounts []models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, "checking", accounts[1].Name)
}

func TestAccountService_GetAccount(t *testing.T) {
	t.Run("existing account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
				AddRow(1, "savings", "rainy day"))

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("GET", "/accounts/1", nil)
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var account models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
		assert.Equal(t, "savings", account.Name)
	})

	t.Run("missing account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("GET", "/accounts/404", nil)
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountService_UpdateAccount(t *testing.T) {
	t.Run("existing account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery("UPDATE accounts").
			WithArgs("renamed", "", int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("PUT", "/accounts/1", strings.NewReader(`{"name": "renamed"}`))
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var account models.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
		assert.Equal(t, "renamed", account.Name)
	})

	t.Run("missing account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery("UPDATE accounts").
			WillReturnError(sql.ErrNoRows)

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("PUT", "/accounts/404", strings.NewReader(`{"name": "renamed"}`))
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountService_DeleteAccount(t *testing.T) {
	t.Run("existing account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectExec("DELETE FROM accounts").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("DELETE", "/accounts/1", nil)
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("already absent account", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectExec("DELETE FROM accounts").
			WithArgs(int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		as := NewAccountService(db, testLogger())

		req := httptest.NewRequest("DELETE", "/accounts/404", nil)
		w := httptest.NewRecorder()
		newAccountRouter(as).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
