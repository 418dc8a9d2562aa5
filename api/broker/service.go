package broker

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/internal/serviceiface"
)

type BrokerService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewBrokerService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &BrokerService{config: cfg, pool: pool}
}

func (s *BrokerService) Name() string {
	return "broker"
}

func (s *BrokerService) Start() error {
	go StartBrokerService(s.config, s.pool)
	return nil
}

func (s *BrokerService) Stop() error {
	// Broker service shuts down with the process.
	return nil
}
