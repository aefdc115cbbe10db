package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/ledgerpath/backend/internal/config"
	"github.com/ledgerpath/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrAccountNotFound means the accounts service answered and the account does
// not exist. This is a client-input condition, not an infrastructure failure.
var ErrAccountNotFound = errors.New("account not found")

// UpstreamError means the accounts service could not give a usable answer:
// unreachable, erroring, or returning a body we cannot decode.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("accounts service: %v", e.Err)
	}
	return fmt.Sprintf("accounts service returned status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AccountsClient looks up accounts in the accounts service over HTTP
type AccountsClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewAccountsClient builds a lookup client with a fixed request timeout
func NewAccountsClient(cfg config.AccountsClientConfig, log *logrus.Logger) *AccountsClient {
	return &AccountsClient{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// GetAccount fetches a single account by id. Callers only need existence
// confirmation, but the decoded representation is returned for completeness.
func (c *AccountsClient) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	url := fmt.Sprintf("%s/accounts/%d", c.baseURL, id)
	requestID := uuid.New().String()

	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
	}).Info("Account lookup request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithField("request_id", requestID).Warnf("Account lookup request failed: %v", err)
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     resp.StatusCode,
	}).Info("Account lookup response")

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrAccountNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var account models.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		c.log.WithField("request_id", requestID).Warnf("Failed to decode account lookup response: %v", err)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: "invalid response", Err: err}
	}
	if account.ID == 0 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: "invalid response"}
	}

	return &account, nil
}
