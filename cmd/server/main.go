package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/globalbank/bookentry/internal/aggregate"
	"github.com/globalbank/bookentry/internal/bookentry"
	"github.com/globalbank/bookentry/internal/config"
	eskafka "github.com/globalbank/bookentry/internal/events/kafka"
	esmemory "github.com/globalbank/bookentry/internal/events/memory"
	storememory "github.com/globalbank/bookentry/internal/eventstore/memory"
	storepg "github.com/globalbank/bookentry/internal/eventstore/postgres"
	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models"
	"github.com/globalbank/bookentry/internal/readmodel"
	rmmemory "github.com/globalbank/bookentry/internal/readmodel/memory"
	rmpg "github.com/globalbank/bookentry/internal/readmodel/postgres"
	"github.com/globalbank/bookentry/internal/suspense"
	"github.com/globalbank/bookentry/pkg/metrics"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	var store interfaces.EventStore = storememory.NewMemoryEventStore()
	var rmStore interfaces.ReadModelStore = rmmemory.NewMemoryReadModelStore()

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("opening postgres", zap.Error(err))
		}
		defer db.Close()
		store = storepg.NewPostgresEventStore(db)
		rmStore = rmpg.NewPostgresReadModelStore(db)
	}

	projector := readmodel.NewProjector(rmStore, logger)

	// With brokers configured, events go out over Kafka and a separate
	// consumer process projects them. Without brokers the in-memory
	// publisher feeds the projector directly.
	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := eskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	} else {
		mp := esmemory.NewMemoryPublisher()
		go projector.Run(context.Background(), mp.Subscribe())
		publisher = mp
	}

	registry := aggregate.NewRegistry(store, publisher, logger)
	resolver := suspense.NewResolver(registry, logger)
	service := bookentry.NewService(registry, resolver, cfg.LegTimeout, logger)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.Handle("/metrics", metrics.Handler())

	http.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req struct {
				AccountNumber string `json:"account_number"`
				AccountName   string `json:"account_name"`
				AccountType   string `json:"account_type"`
				CurrencyCode  string `json:"currency_code"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			err := service.AddAccount(r.Context(), models.AddAccount{
				AccountNumber: req.AccountNumber,
				AccountName:   req.AccountName,
				AccountType:   models.AccountType(req.AccountType),
				CurrencyCode:  req.CurrencyCode,
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)

		case http.MethodPut:
			var req struct {
				AccountNumber string `json:"account_number"`
				AccountName   string `json:"account_name"`
				AccountType   string `json:"account_type"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			err := service.UpdateAccount(r.Context(), models.UpdateAccount{
				AccountNumber: req.AccountNumber,
				AccountName:   req.AccountName,
				AccountType:   models.AccountType(req.AccountType),
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)

		case http.MethodGet:
			accountNumber := r.URL.Query().Get("account_number")
			if accountNumber == "" {
				http.Error(w, "account_number is a mandatory field", http.StatusBadRequest)
				return
			}
			snapshot, err := service.ReadAccount(r.Context(), accountNumber)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(snapshot)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	http.HandleFunc("/deposits", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req models.DepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Reference == "" {
			req.Reference = uuid.New().String()
		}
		writeResponse(w, service.PerformDeposit(r.Context(), req))
	})

	http.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req models.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Reference == "" {
			req.Reference = uuid.New().String()
		}
		writeResponse(w, service.PerformTransfer(r.Context(), req))
	})

	http.HandleFunc("/reversals", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req models.ReversalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeResponse(w, service.PerformReversal(r.Context(), req))
	})

	http.HandleFunc("/reporting/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		accounts, err := rmStore.GetAllAccounts(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	})

	http.HandleFunc("/reporting/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		accountNumber := r.URL.Query().Get("account_number")
		if accountNumber == "" {
			http.Error(w, "account_number is a mandatory field", http.StatusBadRequest)
			return
		}
		posts, err := rmStore.GetAccountPosts(r.Context(), accountNumber)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(posts)
	})

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func writeResponse(w http.ResponseWriter, resp models.ServiceResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
