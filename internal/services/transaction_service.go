package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/ledgerpath/backend/internal/clients"
	"github.com/ledgerpath/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// AccountLookup confirms account existence against the accounts service
type AccountLookup interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// TransactionService exposes CRUD over account transactions. Create is gated by
// an account existence check against the accounts service.
type TransactionService struct {
	db        *sql.DB
	redis     *redis.Client
	accounts  AccountLookup
	validator *ValidationHelper
	log       *logrus.Logger
}

func NewTransactionService(db *sql.DB, rdb *redis.Client, accounts AccountLookup, log *logrus.Logger) *TransactionService {
	return &TransactionService{
		db:        db,
		redis:     rdb,
		accounts:  accounts,
		validator: NewValidationHelper(),
		log:       log,
	}
}

const transactionColumns = `id, account_id, type, amount, COALESCE(description, ''), occurred_at, COALESCE(category, '')`

const recentTransactionsKey = "transactions:recent"
const recentTransactionsCap = 100

// Root reports service liveness
// @Summary Liveness message
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (ts *TransactionService) Root(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]string{"message": "Transactions Service running!"})
}

// CreateTransaction creates a transaction after validating the referenced
// account against the accounts service
// @Summary Create a new transaction
// @Description Persist a transaction after confirming the account exists in the accounts service
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body models.TransactionPayload true "Transaction data"
// @Success 201 {object} models.AccountTransaction
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /transactions [post]
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload models.TransactionPayload
	if err := DecodeJSON(w, r, &payload); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.ValidateStruct(&payload); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Confirm the account exists before writing anything. Lookup failures
	// abort the create: not-found is the caller's mistake, everything else
	// is an upstream failure.
	if _, err := ts.accounts.GetAccount(r.Context(), payload.AccountID); err != nil {
		if errors.Is(err, clients.ErrAccountNotFound) {
			SendErrorResponse(w, "Account not found", http.StatusBadRequest, nil)
			return
		}
		ts.log.Errorf("Account lookup failed for account %d: %v", payload.AccountID, err)
		SendErrorResponse(w, "Accounts service unavailable", http.StatusBadGateway, nil)
		return
	}

	tx := models.AccountTransaction{
		AccountID:   payload.AccountID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Description: payload.Description,
		OccurredAt:  payload.OccurredAt,
		Category:    payload.Category,
	}

	err := ts.db.QueryRow(`
		INSERT INTO account_transactions (account_id, type, amount, description, occurred_at, category)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id`,
		tx.AccountID, tx.Type, tx.Amount, tx.Description, tx.OccurredAt, tx.Category,
	).Scan(&tx.ID)
	if err != nil {
		ts.log.Errorf("Failed to insert transaction: %v", err)
		SendErrorResponse(w, "Failed to create transaction", http.StatusInternalServerError, nil)
		return
	}

	ts.cacheRecent(r.Context(), &tx)

	SendJSON(w, http.StatusCreated, tx)
}

// ListTransactions lists transactions with optional exact-match filters
// @Summary List transactions
// @Description List transactions, optionally filtered by account and category, most recent first
// @Tags transactions
// @Produce json
// @Param account_id query int false "Filter by account ID"
// @Param category query string false "Filter by category"
// @Success 200 {array} models.AccountTransaction
// @Failure 400 {object} ErrorResponse
// @Router /transactions [get]
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := `SELECT ` + transactionColumns + ` FROM account_transactions`
	var args []any

	if accountID := r.URL.Query().Get("account_id"); accountID != "" {
		id, err := strconv.ParseInt(accountID, 10, 64)
		if err != nil {
			SendErrorResponse(w, "Invalid account_id filter", http.StatusBadRequest, nil)
			return
		}
		args = append(args, id)
		query += ` WHERE account_id = $1`
	}
	if category := r.URL.Query().Get("category"); category != "" {
		args = append(args, category)
		if len(args) == 1 {
			query += ` WHERE category = $1`
		} else {
			query += ` AND category = $2`
		}
	}
	query += ` ORDER BY occurred_at DESC, id DESC`

	rows, err := ts.db.Query(query, args...)
	if err != nil {
		ts.log.Errorf("Failed to list transactions: %v", err)
		SendErrorResponse(w, "Failed to list transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := make([]models.AccountTransaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			ts.log.Errorf("Failed to scan transaction row: %v", err)
			SendErrorResponse(w, "Failed to list transactions", http.StatusInternalServerError, nil)
			return
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		ts.log.Errorf("Failed to read transaction rows: %v", err)
		SendErrorResponse(w, "Failed to list transactions", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, transactions)
}

// GetTransaction fetches a single transaction by id
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param txId path int true "Transaction ID"
// @Success 200 {object} models.AccountTransaction
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{txId} [get]
func (ts *TransactionService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "txId"))
	if err != nil {
		SendErrorResponse(w, "Invalid transaction id", http.StatusBadRequest, nil)
		return
	}

	row := ts.db.QueryRow(`SELECT `+transactionColumns+` FROM account_transactions WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		ts.log.Errorf("Failed to fetch transaction %d: %v", id, err)
		SendErrorResponse(w, "Failed to fetch transaction", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, tx)
}

// UpdateTransaction replaces every mutable field of an existing transaction.
// The account reference is not re-validated against the accounts service here;
// only Create performs the cross-service check.
// @Summary Replace a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param txId path int true "Transaction ID"
// @Param transaction body models.TransactionPayload true "Full replacement payload"
// @Success 200 {object} models.AccountTransaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{txId} [put]
func (ts *TransactionService) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "txId"))
	if err != nil {
		SendErrorResponse(w, "Invalid transaction id", http.StatusBadRequest, nil)
		return
	}

	var payload models.TransactionPayload
	if err := DecodeJSON(w, r, &payload); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := ts.validator.ValidateStruct(&payload); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx := models.AccountTransaction{
		ID:          id,
		AccountID:   payload.AccountID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Description: payload.Description,
		OccurredAt:  payload.OccurredAt,
		Category:    payload.Category,
	}

	var updatedID int64
	err = ts.db.QueryRow(`
		UPDATE account_transactions
		SET account_id = $1, type = $2, amount = $3, description = NULLIF($4, ''), occurred_at = $5, category = NULLIF($6, '')
		WHERE id = $7
		RETURNING id`,
		tx.AccountID, tx.Type, tx.Amount, tx.Description, tx.OccurredAt, tx.Category, id,
	).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		ts.log.Errorf("Failed to update transaction %d: %v", id, err)
		SendErrorResponse(w, "Failed to update transaction", http.StatusInternalServerError, nil)
		return
	}

	ts.invalidateRecent(r.Context())

	SendJSON(w, http.StatusOK, tx)
}

// DeleteTransaction removes a transaction permanently
// @Summary Delete a transaction
// @Tags transactions
// @Param txId path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{txId} [delete]
func (ts *TransactionService) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "txId"))
	if err != nil {
		SendErrorResponse(w, "Invalid transaction id", http.StatusBadRequest, nil)
		return
	}

	result, err := ts.db.Exec(`DELETE FROM account_transactions WHERE id = $1`, id)
	if err != nil {
		ts.log.Errorf("Failed to delete transaction %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete transaction", http.StatusInternalServerError, nil)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		ts.log.Errorf("Failed to read delete result for transaction %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete transaction", http.StatusInternalServerError, nil)
		return
	}
	if affected == 0 {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}

	ts.invalidateRecent(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// GetRecentTransactions retrieves recent transactions
// @Summary Get recent transactions
// @Description Get a list of recent transactions with configurable limit
// @Tags transactions
// @Produce json
// @Param limit query int false "Number of transactions to return (default: 10, max: 100)"
// @Success 200 {array} models.AccountTransaction
// @Failure 400 {object} ErrorResponse
// @Router /transactions/recent [get]
func (ts *TransactionService) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit int `validate:"omitempty,min=1,max=100"`
	}
	req.Limit = 10

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = l
		}
	}
	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if transactions, ok := ts.recentFromCache(r.Context(), req.Limit); ok {
		SendJSON(w, http.StatusOK, transactions)
		return
	}

	rows, err := ts.db.Query(`SELECT `+transactionColumns+` FROM account_transactions ORDER BY id DESC LIMIT $1`, req.Limit)
	if err != nil {
		ts.log.Errorf("Failed to fetch recent transactions: %v", err)
		SendErrorResponse(w, "Failed to fetch recent transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := make([]models.AccountTransaction, 0, req.Limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			ts.log.Errorf("Failed to scan recent transaction row: %v", err)
			SendErrorResponse(w, "Failed to fetch recent transactions", http.StatusInternalServerError, nil)
			return
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		ts.log.Errorf("Failed to read recent transaction rows: %v", err)
		SendErrorResponse(w, "Failed to fetch recent transactions", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, transactions)
}

// cacheRecent pushes a freshly created transaction onto the recent list.
// Best-effort: cache failures only get logged.
func (ts *TransactionService) cacheRecent(ctx context.Context, tx *models.AccountTransaction) {
	if ts.redis == nil {
		return
	}
	data, err := json.Marshal(tx)
	if err != nil {
		ts.log.Warnf("Failed to marshal transaction %d for cache: %v", tx.ID, err)
		return
	}
	if err := ts.redis.LPush(ctx, recentTransactionsKey, data).Err(); err != nil {
		ts.log.Warnf("Failed to cache transaction %d: %v", tx.ID, err)
		return
	}
	if err := ts.redis.LTrim(ctx, recentTransactionsKey, 0, recentTransactionsCap-1).Err(); err != nil {
		ts.log.Warnf("Failed to trim recent transactions cache: %v", err)
	}
}

// invalidateRecent drops the recent list after a row is replaced or removed so
// the cache never serves stale fields or deleted rows
func (ts *TransactionService) invalidateRecent(ctx context.Context) {
	if ts.redis == nil {
		return
	}
	if err := ts.redis.Del(ctx, recentTransactionsKey).Err(); err != nil {
		ts.log.Warnf("Failed to invalidate recent transactions cache: %v", err)
	}
}

// recentFromCache reads the recent list from Redis, falling back to SQL when
// Redis is absent, failing, or holding fewer rows than asked for
func (ts *TransactionService) recentFromCache(ctx context.Context, limit int) ([]models.AccountTransaction, bool) {
	if ts.redis == nil {
		return nil, false
	}
	entries, err := ts.redis.LRange(ctx, recentTransactionsKey, 0, int64(limit)-1).Result()
	if err != nil || len(entries) < limit {
		if err != nil {
			ts.log.Warnf("Failed to read recent transactions cache: %v", err)
		}
		return nil, false
	}

	transactions := make([]models.AccountTransaction, 0, len(entries))
	for _, entry := range entries {
		var tx models.AccountTransaction
		if err := json.Unmarshal([]byte(entry), &tx); err != nil {
			ts.log.Warnf("Skipping unreadable cache entry: %v", err)
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.AccountTransaction, error) {
	var tx models.AccountTransaction
	var occurredAt sql.NullTime
	if err := row.Scan(&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Description, &occurredAt, &tx.Category); err != nil {
		return nil, err
	}
	if occurredAt.Valid {
		t := occurredAt.Time
		tx.OccurredAt = &t
	}
	return &tx, nil
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
