package command

import (
	"fmt"

	"github.com/pixil98/go-service"
	"github.com/tndm-coder/fate-ardent-bot/internal/commands"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	err := cfg.applyEnv()
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	store, err := cfg.Storage.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	clock, err := cfg.Quota.BuildClock()
	if err != nil {
		return nil, fmt.Errorf("creating clock: %w", err)
	}

	handler := commands.NewHandler(store, commands.NewEngine(commands.WithClock(clock)))

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	bridge := cfg.Nats.buildBridge(natsServer, handler)

	return service.WorkerList{
		"nats":   natsServer,
		"bridge": bridge,
	}, nil
}
