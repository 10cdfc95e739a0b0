package bookentry

import (
	"context"

	"github.com/globalbank/bookentry/internal/models"
	"go.uber.org/zap"
)

// sagaState names the steps of the posting saga. The saga is an
// explicit state machine rather than error unwinding so that the
// no-compensation-on-fault rule is a visible branch.
type sagaState int

const (
	sagaDebit sagaState = iota
	sagaCredit
	sagaCompensate
	sagaDone
)

// doPosting makes a two-leg posting appear atomic despite being two
// independent aggregate calls. The debit and credit legs run
// sequentially under a per-leg deadline. A clean business rejection of
// the credit leg triggers the compensating credit back to the source; a
// timeout or transport fault never does, because the saga cannot know
// whether the leg applied. Those cases are surfaced as a general error
// and left to out-of-band reconciliation instead of risking a blind
// double-correction.
func (s *Service) doPosting(ctx context.Context, operation string, req models.PostingRequest) models.ServiceResponse {
	logger := s.logger.With(
		zap.String("reference", req.Reference),
		zap.String("source_account", req.SourceAccount),
		zap.String("destination_account", req.DestinationAccount))

	var final models.PostingResponse

	for state := sagaDebit; state != sagaDone; {
		switch state {
		case sagaDebit:
			resp, err := s.addPost(ctx, req.SourceAccount, models.Debit, req, req.Narrative)
			if err != nil {
				logger.Error("debit leg fault, flagging for reconciliation",
					zap.Bool("reconciliation_required", true),
					zap.Error(err))
				return respond(operation, models.RCGeneralError, "Posting error")
			}
			logger.Info("debit leg response", zap.String("response_code", resp.ResponseCode))

			if resp.ResponseCode != models.RCSuccess {
				// Nothing was applied; return the rejection as is.
				final = resp
				state = sagaDone
				continue
			}
			state = sagaCredit

		case sagaCredit:
			resp, err := s.addPost(ctx, req.DestinationAccount, models.Credit, req, req.Narrative)
			if err != nil {
				logger.Error("credit leg fault, flagging for reconciliation",
					zap.Bool("reconciliation_required", true),
					zap.Error(err))
				return respond(operation, models.RCGeneralError, "Posting error")
			}
			logger.Info("credit leg response", zap.String("response_code", resp.ResponseCode))

			final = resp
			if resp.ResponseCode != models.RCSuccess {
				state = sagaCompensate
				continue
			}
			state = sagaDone

		case sagaCompensate:
			// Undo the applied debit. The original credit failure is
			// what the caller sees; the compensation's own outcome is
			// only logged.
			resp, err := s.addPost(ctx, req.SourceAccount, models.Credit, req, "AUTO REVERSAL")
			if err != nil {
				logger.Error("auto reversal fault, flagging for reconciliation",
					zap.Bool("reconciliation_required", true),
					zap.Error(err))
			} else {
				logger.Info("auto reversal response", zap.String("response_code", resp.ResponseCode))
			}
			state = sagaDone
		}
	}

	logger.Info("posting complete", zap.String("response_code", final.ResponseCode))
	return respond(operation, final.ResponseCode, final.Narrative)
}

// addPost sends one posting leg to an account under the per-leg
// deadline. No cancellation reaches the worker on expiry; past the
// deadline the leg is fire-and-forget.
func (s *Service) addPost(ctx context.Context, accountNumber string, indicator models.CreditDebitIndicator, req models.PostingRequest, narrative string) (models.PostingResponse, error) {
	legCtx, cancel := context.WithTimeout(ctx, s.legTimeout)
	defer cancel()

	reply, err := s.registry.Ask(legCtx, models.AddPost{
		AccountNumber:        accountNumber,
		Reference:            req.Reference,
		Narrative:            narrative,
		CurrencyCode:         req.CurrencyCode,
		CreditDebitIndicator: indicator,
		Amount:               req.Amount,
	})
	if err != nil {
		return models.PostingResponse{}, err
	}

	resp, ok := reply.(models.PostingResponse)
	if !ok {
		return models.PostingResponse{}, &unexpectedReplyError{account: accountNumber, reply: reply}
	}
	return resp, nil
}

type unexpectedReplyError struct {
	account string
	reply   any
}

func (e *unexpectedReplyError) Error() string {
	return "unexpected posting reply for account " + e.account
}
