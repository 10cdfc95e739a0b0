package postgres

import (
	"context"
	"database/sql"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/stream"
)

// PostgresReadModelStore is the reporting store behind the projector.
// Both create operations upsert on the natural key, so replaying or
// re-delivering events leaves the store unchanged.
type PostgresReadModelStore struct {
	db *sql.DB
}

func NewPostgresReadModelStore(db *sql.DB) *PostgresReadModelStore {
	return &PostgresReadModelStore{
		db: db,
	}
}

func (p *PostgresReadModelStore) CreateAccount(ctx context.Context, row stream.AccountRow) error {
	const query = `INSERT INTO account (account_number, account_name, account_type, currency_code, date_created)
	VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (account_number) DO UPDATE
	SET account_name = EXCLUDED.account_name, account_type = EXCLUDED.account_type`

	_, err := p.db.ExecContext(ctx, query, row.AccountNumber, row.AccountName, row.AccountType, row.CurrencyCode, row.DateCreated)
	return err
}

func (p *PostgresReadModelStore) CreatePost(ctx context.Context, row stream.PostRow) error {
	const query = `INSERT INTO account_post (post_id, account_number, reference, narrative, amount, balance, date_created)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (post_id) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query, row.PostID, row.AccountNumber, row.Reference, row.Narrative, row.Amount, row.Balance, row.DateCreated)
	return err
}

func (p *PostgresReadModelStore) GetAccount(ctx context.Context, accountNumber string) (stream.AccountRow, error) {
	const query = `SELECT account_number, account_name, account_type, currency_code, date_created
	FROM account WHERE account_number = $1`

	var row stream.AccountRow
	err := p.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&row.AccountNumber,
		&row.AccountName,
		&row.AccountType,
		&row.CurrencyCode,
		&row.DateCreated,
	)
	if err != nil {
		return stream.AccountRow{}, err
	}
	return row, nil
}

func (p *PostgresReadModelStore) GetAllAccounts(ctx context.Context) ([]stream.AccountRow, error) {
	const query = `SELECT account_number, account_name, account_type, currency_code, date_created FROM account`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var accounts []stream.AccountRow

	for rows.Next() {
		var row stream.AccountRow
		if err := rows.Scan(&row.AccountNumber, &row.AccountName, &row.AccountType, &row.CurrencyCode, &row.DateCreated); err != nil {
			return nil, err
		}
		accounts = append(accounts, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *PostgresReadModelStore) GetAccountPosts(ctx context.Context, accountNumber string) ([]stream.PostRow, error) {
	const query = `SELECT post_id, account_number, reference, narrative, amount, balance, date_created
	FROM account_post WHERE account_number = $1 ORDER BY date_created`

	rows, err := p.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var posts []stream.PostRow
	for rows.Next() {
		var row stream.PostRow
		if err := rows.Scan(&row.PostID, &row.AccountNumber, &row.Reference, &row.Narrative, &row.Amount, &row.Balance, &row.DateCreated); err != nil {
			return nil, err
		}
		posts = append(posts, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

var _ interfaces.ReadModelStore = (*PostgresReadModelStore)(nil)
