package services

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerpath/backend/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// pq error code for unique_violation
const uniqueViolation = "23505"

// AccountService exposes CRUD over accounts. It is the system of record the
// transactions service consults before creating a transaction.
type AccountService struct {
	db        *sql.DB
	validator *ValidationHelper
	log       *logrus.Logger
}

func NewAccountService(db *sql.DB, log *logrus.Logger) *AccountService {
	return &AccountService{
		db:        db,
		validator: NewValidationHelper(),
		log:       log,
	}
}

const accountColumns = `id, name, COALESCE(description, '')`

// Root reports service liveness
// @Summary Liveness message
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (as *AccountService) Root(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]string{"message": "Accounts Service running!"})
}

// CreateAccount creates an account with a unique name
// @Summary Create a new account
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.AccountPayload true "Account data"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /accounts [post]
func (as *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload models.AccountPayload
	if err := DecodeJSON(w, r, &payload); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := as.validator.ValidateStruct(&payload); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account := models.Account{
		Name:        payload.Name,
		Description: payload.Description,
	}

	err := as.db.QueryRow(`
		INSERT INTO accounts (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id`,
		account.Name, account.Description,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "Account name already exists", http.StatusConflict, nil)
			return
		}
		as.log.Errorf("Failed to insert account: %v", err)
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusCreated, account)
}

// ListAccounts lists all accounts ordered by id
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {array} models.Account
// @Router /accounts [get]
func (as *AccountService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	rows, err := as.db.Query(`SELECT ` + accountColumns + ` FROM accounts ORDER BY id`)
	if err != nil {
		as.log.Errorf("Failed to list accounts: %v", err)
		SendErrorResponse(w, "Failed to list accounts", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.Description); err != nil {
			as.log.Errorf("Failed to scan account row: %v", err)
			SendErrorResponse(w, "Failed to list accounts", http.StatusInternalServerError, nil)
			return
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		as.log.Errorf("Failed to read account rows: %v", err)
		SendErrorResponse(w, "Failed to list accounts", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, accounts)
}

// GetAccount fetches a single account by id
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param accountId path int true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId} [get]
func (as *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	var account models.Account
	err = as.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id).
		Scan(&account.ID, &account.Name, &account.Description)
	if errors.Is(err, sql.ErrNoRows) {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		as.log.Errorf("Failed to fetch account %d: %v", id, err)
		SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, account)
}

// UpdateAccount replaces an account's name and description
// @Summary Replace an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountId path int true "Account ID"
// @Param account body models.AccountPayload true "Full replacement payload"
// @Success 200 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /accounts/{accountId} [put]
func (as *AccountService) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	var payload models.AccountPayload
	if err := DecodeJSON(w, r, &payload); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := as.validator.ValidateStruct(&payload); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account := models.Account{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
	}

	var updatedID int64
	err = as.db.QueryRow(`
		UPDATE accounts
		SET name = $1, description = NULLIF($2, '')
		WHERE id = $3
		RETURNING id`,
		account.Name, account.Description, id,
	).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "Account name already exists", http.StatusConflict, nil)
			return
		}
		as.log.Errorf("Failed to update account %d: %v", id, err)
		SendErrorResponse(w, "Failed to update account", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account; locally recorded transactions cascade away
// @Summary Delete an account
// @Tags accounts
// @Param accountId path int true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId} [delete]
func (as *AccountService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	result, err := as.db.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		as.log.Errorf("Failed to delete account %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete account", http.StatusInternalServerError, nil)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		as.log.Errorf("Failed to read delete result for account %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete account", http.StatusInternalServerError, nil)
		return
	}
	if affected == 0 {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
