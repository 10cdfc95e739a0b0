package models

import "github.com/shopspring/decimal"

// PostingRequest carries one two-leg posting through the saga. It is
// saga-local and never persisted.
type PostingRequest struct {
	Reference          string
	SourceAccount      string
	DestinationAccount string
	Narrative          string
	CurrencyCode       string
	Amount             decimal.Decimal
}

// PostingResponse is the aggregate's reply to an AddPost command. A
// non-success response code is a normal business outcome, not a fault.
type PostingResponse struct {
	ResponseCode         string
	Narrative            string
	CreditDebitIndicator CreditDebitIndicator
}

// ServiceResponse is the caller-visible outcome of a deposit, transfer
// or reversal.
type ServiceResponse struct {
	ResponseCode string `json:"response_code"`
	Narrative    string `json:"narrative"`
}

// DepositRequest credits an account from the currency's cash suspense
// account.
type DepositRequest struct {
	Reference     string          `json:"reference"`
	AccountNumber string          `json:"account_number"`
	CurrencyCode  string          `json:"currency_code"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferRequest moves funds between two customer accounts.
type TransferRequest struct {
	Reference          string          `json:"reference"`
	SourceAccount      string          `json:"source_account"`
	DestinationAccount string          `json:"destination_account"`
	CurrencyCode       string          `json:"currency_code"`
	Amount             decimal.Decimal `json:"amount"`
}

// ReversalRequest undoes a previous posting by running it with source
// and destination swapped. Validating that the original posting exists
// is the caller's responsibility.
type ReversalRequest struct {
	OrgnlReference          string          `json:"orgnl_reference"`
	OrgnlSourceAccount      string          `json:"orgnl_source_account"`
	OrgnlDestinationAccount string          `json:"orgnl_destination_account"`
	OrgnlCurrencyCode       string          `json:"orgnl_currency_code"`
	OrgnlAmount             decimal.Decimal `json:"orgnl_amount"`
}
