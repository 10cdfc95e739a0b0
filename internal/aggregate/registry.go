package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	bevents "github.com/globalbank/bookentry/internal/events"
	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/models/events"
	"github.com/globalbank/bookentry/pkg/metrics"
	"go.uber.org/zap"
)

const mailboxSize = 64

// Registry owns one worker per active account number. All commands for
// an account number are drained strictly in arrival order by its
// worker, which is the mechanism behind the balance invariant and the
// race-free suspense-account init. Commands for different account
// numbers run fully concurrently.
type Registry struct {
	store     interfaces.EventStore
	publisher interfaces.EventPublisher
	logger    *zap.Logger

	mapMu   sync.Mutex // protects workers map itself
	workers map[string]*worker
}

// NewRegistry creates a registry over the given event store. The
// publisher may be nil, in which case events are persisted but not
// published.
func NewRegistry(store interfaces.EventStore, publisher interfaces.EventPublisher, logger *zap.Logger) *Registry {
	return &Registry{
		store:     store,
		publisher: publisher,
		logger:    logger,
		workers:   make(map[string]*worker),
	}
}

// Compile-time check: ensure Registry implements CommandBus.
var _ interfaces.CommandBus = (*Registry)(nil)

type askResult struct {
	reply any
	err   error
}

type envelope struct {
	cmd   models.Command
	reply chan askResult
}

// Ask validates cmd, routes it to the worker for its account number and
// waits for the reply or the context deadline. A deadline expiry is
// indeterminate: the worker will still process the command, there is
// just nobody left waiting for the reply.
func (r *Registry) Ask(ctx context.Context, cmd models.Command) (any, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	w := r.workerFor(cmd.Key())
	env := envelope{cmd: cmd, reply: make(chan askResult, 1)}

	select {
	case w.mailbox <- env:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.reply, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) workerFor(accountNumber string) *worker {
	r.mapMu.Lock()
	defer r.mapMu.Unlock()

	if w, exists := r.workers[accountNumber]; exists {
		return w
	}

	w := &worker{
		accountNumber: accountNumber,
		mailbox:       make(chan envelope, mailboxSize),
		account:       NewAccount(),
		store:         r.store,
		publisher:     r.publisher,
		logger:        r.logger.With(zap.String("account_number", accountNumber)),
	}
	r.workers[accountNumber] = w
	go w.run()
	return w
}

// worker is the single writer for one account number.
type worker struct {
	accountNumber string
	mailbox       chan envelope
	account       *Account
	store         interfaces.EventStore
	publisher     interfaces.EventPublisher
	logger        *zap.Logger
	replayed      bool
}

func (w *worker) run() {
	for env := range w.mailbox {
		env.reply <- w.handle(env.cmd)
	}
}

func (w *worker) handle(cmd models.Command) askResult {
	// State is rebuilt from the log before the first command, and again
	// on each command until the store lets us: a replay failure is a
	// retryable persistence fault, not a poisoned worker.
	if !w.replayed {
		if err := w.replay(); err != nil {
			return askResult{err: fmt.Errorf("replaying account %s: %w", w.accountNumber, err)}
		}
		w.replayed = true
	}

	now := time.Now()

	switch c := cmd.(type) {
	case models.AddAccount:
		evt := w.account.DecideAddAccount(c, now)
		if evt == nil {
			w.logger.Info("account already exists",
				zap.String("account_name", w.account.Snapshot().AccountName))
			return askResult{reply: Ack{}}
		}
		w.logger.Info("creating new account", zap.String("account_name", c.AccountName))
		if err := w.persist(evt); err != nil {
			return askResult{err: err}
		}
		return askResult{reply: Ack{}}

	case models.UpdateAccount:
		evt := w.account.DecideUpdateAccount(c, now)
		if err := w.persist(evt); err != nil {
			return askResult{err: err}
		}
		return askResult{reply: Ack{}}

	case models.ReadAccount:
		return askResult{reply: w.account.Snapshot()}

	case models.GetOrInitSuspenseAccount:
		evt := w.account.DecideGetOrInitSuspense(c, now)
		if evt == nil {
			w.logger.Info("suspense account already initialized")
			return askResult{reply: w.account.Snapshot()}
		}
		if err := w.persist(evt); err != nil {
			return askResult{err: err}
		}
		return askResult{reply: w.account.Snapshot()}

	case models.AddPost:
		evt, resp := w.account.DecideAddPost(c, now)
		if evt == nil {
			w.logger.Info("posting rejected",
				zap.String("response_code", resp.ResponseCode),
				zap.String("reference", c.Reference))
			return askResult{reply: resp}
		}
		if err := w.persist(evt); err != nil {
			return askResult{err: err}
		}
		return askResult{reply: resp}

	default:
		return askResult{err: fmt.Errorf("unknown command %T for account %s", cmd, w.accountNumber)}
	}
}

// persist durably appends the event, folds it into state and hands it
// to the publishing relay. No event counts as applied unless Append
// returned without error. The store call deliberately runs without the
// caller's context: once a command is picked up it completes even if
// the caller's deadline has expired.
func (w *worker) persist(evt events.Event) error {
	rec, err := w.store.Append(context.Background(), w.accountNumber, evt)
	if err != nil {
		return fmt.Errorf("appending event for account %s: %w", w.accountNumber, err)
	}
	w.account.Apply(evt)
	w.publish(rec)
	return nil
}

func (w *worker) publish(rec interfaces.Record) {
	if w.publisher == nil {
		return
	}

	env, err := bevents.Translate(rec)
	if err != nil {
		// A variant the translator does not know is a programming
		// error; stopping beats silently dropping ledger events.
		w.logger.Fatal("unknown event variant", zap.Error(err))
		return
	}

	metrics.EventPublished(rec.Event.EventType())
	if err := w.publisher.Publish(context.Background(), rec.AccountNumber, env); err != nil {
		w.logger.Error("publishing event",
			zap.Int64("sequence", rec.Sequence),
			zap.String("event_type", rec.Event.EventType()),
			zap.Error(err))
	}
}

func (w *worker) replay() error {
	records, err := w.store.Load(context.Background(), w.accountNumber)
	if err != nil {
		return err
	}
	w.account = NewAccount()
	for _, rec := range records {
		w.account.Apply(rec.Event)
	}
	return nil
}
