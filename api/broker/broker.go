package broker

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/api"
	"BrokerLedger/api/broker/advances"
	"BrokerLedger/api/broker/balances"
	"BrokerLedger/api/broker/companies"
	"BrokerLedger/api/broker/expenses"
	"BrokerLedger/api/broker/slabs"
	"BrokerLedger/api/broker/statements"
	"BrokerLedger/internal/ledger"
	"BrokerLedger/internal/statement"
	"BrokerLedger/internal/store"
)

// Engine bundles the ingestion pipeline and its collaborators so the cron
// service can share the same duplicate index the handlers use.
type Engine struct {
	Pipeline   *statement.Pipeline
	Index      *statement.Index
	Aggregator *ledger.Aggregator
	Statements *store.StatementStore
	Ledger     *store.LedgerStore
}

var engine *Engine

// GetEngine returns the engine built by StartBrokerService (nil before start).
func GetEngine() *Engine { return engine }

// BuildEngine wires the stores, duplicate index and pipeline around a pool.
func BuildEngine(pool *pgxpool.Pool) *Engine {
	companyStore := store.NewCompanyStore(pool)
	statementStore := store.NewStatementStore(pool)
	ledgerStore := store.NewLedgerStore(pool)

	index := statement.NewIndex()
	return &Engine{
		Pipeline:   statement.NewPipeline(companyStore, index, statementStore),
		Index:      index,
		Aggregator: ledger.NewAggregator(ledgerStore),
		Statements: statementStore,
		Ledger:     ledgerStore,
	}
}

// RebuildIndex reloads every user's transaction fingerprints from statement
// history. Called at startup and by the nightly job.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	users, err := e.Statements.UserIDs(ctx)
	if err != nil {
		return err
	}
	for _, userID := range users {
		fps, err := e.Statements.UserFingerprints(ctx, userID)
		if err != nil {
			return err
		}
		e.Index.ReplaceUser(userID, fps)
	}
	return nil
}

// StartBrokerService builds the engine and serves the broker back-office
// API. All routes sit behind the session middleware.
func StartBrokerService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	engine = BuildEngine(pool)
	if err := engine.RebuildIndex(context.Background()); err != nil {
		api.LogError("initial duplicate-index build failed: %v", err)
	}

	advanceStore := store.NewAdvanceStore(pool)
	expenseStore := store.NewExpenseStore(pool)
	companyStore := store.NewCompanyStore(pool)
	slabStore := store.NewSlabStore(pool)
	bankStmtStore := store.NewBankStatementStore(pool)

	r := mux.NewRouter()
	sub := r.PathPrefix("/broker").Subrouter()
	sub.Use(api.SessionMiddleware)

	sub.HandleFunc("/statements/upload", statements.UploadStatement(engine.Pipeline)).Methods("POST")
	sub.HandleFunc("/statements", statements.ListStatements(engine.Statements)).Methods("POST")
	sub.HandleFunc("/bankstatements/upload", statements.UploadBankStatementFile(bankStmtStore)).Methods("POST")
	sub.HandleFunc("/bankstatements", statements.ListBankStatements(bankStmtStore)).Methods("POST")

	sub.HandleFunc("/advances/create", advances.CreateAdvance(advanceStore)).Methods("POST")
	sub.HandleFunc("/advances/toggle", advances.ToggleAdvance(advanceStore)).Methods("POST")
	sub.HandleFunc("/advances/update", advances.UpdateAdvance(advanceStore)).Methods("POST")

	sub.HandleFunc("/expenses/create", expenses.CreateExpense(expenseStore)).Methods("POST")
	sub.HandleFunc("/expenses/status", expenses.SetExpenseStatus(expenseStore)).Methods("POST")

	sub.HandleFunc("/slabs/update", slabs.ReplaceSchedule(slabStore)).Methods("POST")
	sub.HandleFunc("/slabs", slabs.GetSchedule(slabStore)).Methods("POST")

	sub.HandleFunc("/companies/create", companies.CreateCompany(companyStore)).Methods("POST")
	sub.HandleFunc("/companies", companies.ListCompanies(companyStore)).Methods("POST")

	sub.HandleFunc("/ledger", balances.GetLedger(engine.Aggregator)).Methods("POST")

	port := "6243"
	if cfg != nil {
		if p, ok := cfg["port"].(string); ok && p != "" {
			port = p
		}
	}
	log.Println("Broker Service started on :" + port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Broker Service failed: %v", err)
	}
}
