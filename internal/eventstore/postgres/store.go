package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/events"
)

// PostgresEventStore persists account events in an append-only table.
// The payload is stored as JSON with the event type as discriminator;
// the per-account sequence is assigned inside the insert transaction so
// concurrent appends for different accounts never contend.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{
		db: db,
	}
}

func (p *PostgresEventStore) Append(ctx context.Context, accountNumber string, event events.Event) (interfaces.Record, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return interfaces.Record{}, err
	}

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return interfaces.Record{}, err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const seqQuery = `SELECT COALESCE(MAX(sequence), 0) + 1 FROM account_events WHERE account_number = $1`

	var sequence int64
	if err = dbTx.QueryRowContext(ctx, seqQuery, accountNumber).Scan(&sequence); err != nil {
		return interfaces.Record{}, err
	}

	const insQuery = `INSERT INTO account_events (account_number, sequence, event_type, payload)
	VALUES ($1,$2,$3,$4)`

	if _, err = dbTx.ExecContext(ctx, insQuery, accountNumber, sequence, event.EventType(), payload); err != nil {
		return interfaces.Record{}, err
	}

	if err = dbTx.Commit(); err != nil {
		return interfaces.Record{}, err
	}

	return interfaces.Record{
		AccountNumber: accountNumber,
		Sequence:      sequence,
		Event:         event,
	}, nil
}

func (p *PostgresEventStore) Load(ctx context.Context, accountNumber string) ([]interfaces.Record, error) {
	const query = `SELECT sequence, event_type, payload FROM account_events
	WHERE account_number = $1 ORDER BY sequence`

	rows, err := p.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var records []interfaces.Record

	for rows.Next() {
		var (
			sequence  int64
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&sequence, &eventType, &payload); err != nil {
			return nil, err
		}

		event, err := unmarshalEvent(eventType, payload)
		if err != nil {
			return nil, err
		}

		records = append(records, interfaces.Record{
			AccountNumber: accountNumber,
			Sequence:      sequence,
			Event:         event,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func unmarshalEvent(eventType string, payload []byte) (events.Event, error) {
	switch eventType {
	case events.TypeAccountAdded:
		var e events.AccountAdded
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case events.TypeAccountDetailsChanged:
		var e events.AccountDetailsChanged
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case events.TypePostAdded:
		var e events.PostAdded
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type in store: %s", eventType)
	}
}

var _ interfaces.EventStore = (*PostgresEventStore)(nil)
