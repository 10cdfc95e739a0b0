package models

// DepositCashAccountPrefix is prepended to a currency code to form the
// well-known suspense account number for cash deposits in that currency.
const DepositCashAccountPrefix = "DEP-SUSP-"

// ISO8583-style response codes returned to saga callers.
const (
	RCSuccess           = "00"
	RCDoNotHonour       = "05"
	RCGeneralError      = "06"
	RCInvalidAmount     = "13"
	RCInsufficientFunds = "81"
)
