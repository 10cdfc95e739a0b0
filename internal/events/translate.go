// Package events converts persisted account events into their published
// stream form. The persisted and published contracts are deliberately
// separate so they can evolve independently.
package events

import (
	"fmt"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/events"
	"github.com/globalbank/bookentry/internal/models/stream"
)

// Translate maps one persisted event record to its published envelope.
// The switch is closed over the known event variants; an unrecognized
// variant is a programming-contract violation and returns an error that
// the publishing relay must treat as fatal, never as a droppable event.
func Translate(rec interfaces.Record) (stream.Envelope, error) {
	switch e := rec.Event.(type) {
	case events.AccountAdded:
		return stream.Envelope{
			EventType:     stream.TypeAccountAdded,
			AccountNumber: e.AccountNumber,
			Sequence:      rec.Sequence,
			AccountName:   e.AccountName,
			AccountType:   string(e.AccountType),
			CurrencyCode:  e.CurrencyCode,
			Timestamp:     e.Timestamp,
		}, nil
	case events.AccountDetailsChanged:
		return stream.Envelope{
			EventType:     stream.TypeAccountDetailsChanged,
			AccountNumber: e.AccountNumber,
			Sequence:      rec.Sequence,
			AccountName:   e.AccountName,
			AccountType:   string(e.AccountType),
			Timestamp:     e.Timestamp,
		}, nil
	case events.PostAdded:
		return stream.Envelope{
			EventType:     stream.TypePostAdded,
			AccountNumber: e.AccountNumber,
			Sequence:      rec.Sequence,
			Reference:     e.Reference,
			Narrative:     e.Narrative,
			Amount:        e.Amount,
			Balance:       e.Balance,
			Timestamp:     e.Timestamp,
		}, nil
	default:
		return stream.Envelope{}, fmt.Errorf("unknown event: %T", rec.Event)
	}
}
