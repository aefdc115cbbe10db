package database

import "database/sql"

// AccountsSchema is the accounts service store. Account names are unique; the
// local transactions table exists so an account delete can cascade away any
// rows recorded locally.
const AccountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) UNIQUE NOT NULL,
	description VARCHAR(255)
);
CREATE TABLE IF NOT EXISTS transactions (
	id SERIAL PRIMARY KEY,
	amount INTEGER NOT NULL,
	account_id INTEGER REFERENCES accounts(id) ON DELETE CASCADE
);
`

// TransactionsSchema is the transactions service store. There is deliberately
// no foreign key on account_id: the accounts service owns account existence
// and the two services run against separate databases.
const TransactionsSchema = `
CREATE TABLE IF NOT EXISTS account_transactions (
	id SERIAL PRIMARY KEY,
	account_id INTEGER NOT NULL,
	type VARCHAR(20) NOT NULL,
	amount NUMERIC(12,2) NOT NULL,
	description VARCHAR(255),
	occurred_at TIMESTAMPTZ,
	category VARCHAR(50)
);
CREATE INDEX IF NOT EXISTS idx_account_transactions_account_id ON account_transactions (account_id);
CREATE INDEX IF NOT EXISTS idx_account_transactions_category ON account_transactions (category);
`

// EnsureSchema creates the service's tables when they do not exist yet. This is
// idempotent bootstrap, not migration tooling.
func EnsureSchema(db *sql.DB, ddl string) error {
	_, err := db.Exec(ddl)
	return err
}
