package api

import (
	"strconv"

	"BrokerLedger/internal/serviceiface"
)

type GatewayService struct {
	config map[string]interface{}
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{config: cfg}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	go StartGateway(portFromConfig(s.config))
	return nil
}

func (s *GatewayService) Stop() error {
	// Gateway shuts down with the process.
	return nil
}

// portFromConfig tolerates YAML decoding ports as either string or number.
func portFromConfig(cfg map[string]interface{}) string {
	if cfg == nil {
		return ""
	}
	switch p := cfg["port"].(type) {
	case string:
		return p
	case int:
		return strconv.Itoa(p)
	case float64:
		return strconv.Itoa(int(p))
	}
	return ""
}
