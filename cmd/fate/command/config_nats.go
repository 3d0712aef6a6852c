package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/tndm-coder/fate-ardent-bot/internal/commands"
	"github.com/tndm-coder/fate-ardent-bot/internal/messaging"
)

// NatsConfig configures the embedded broker chat adapters connect to and the
// subjects the bridge serves on.
type NatsConfig struct {
	Host         string `json:"host" env:"HOST"`
	Port         int    `json:"port" env:"PORT"`
	StartTimeout string `json:"start_timeout" env:"START_TIMEOUT"`

	// MaxPayload caps a single request or event body in bytes. Zero keeps
	// messaging.DefaultMaxPayload.
	MaxPayload int `json:"max_payload" env:"MAX_PAYLOAD"`

	// SubjectPrefix leads every action and event subject, e.g. "fate" gives
	// "fate.action.dmg" and "fate.event.dmg".
	SubjectPrefix string `json:"subject_prefix" env:"SUBJECT_PREFIX"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := n.startTimeout(); err != nil {
		el.Add(err)
	}

	if n.Port < 0 || n.Port > 65535 {
		el.Add(fmt.Errorf("port must be between 0 and 65535"))
	}

	if n.MaxPayload < 0 || n.MaxPayload > 64*1024*1024 {
		el.Add(fmt.Errorf("max_payload must be between 0 and 64MiB"))
	}

	el.Add(messaging.ValidateSubjectPrefix(n.SubjectPrefix))

	return el.Err()
}

func (n *NatsConfig) startTimeout() (time.Duration, error) {
	if n.StartTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(n.StartTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing start_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("start_timeout must be positive")
	}
	return d, nil
}

func (n *NatsConfig) subjectPrefix() string {
	if n.SubjectPrefix == "" {
		return messaging.DefaultSubjectPrefix
	}
	return n.SubjectPrefix
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	opts := []messaging.NatsServerOpt{
		messaging.WithListenAddr(n.Host, n.Port),
		messaging.WithClientName(n.subjectPrefix() + "-bridge"),
	}

	d, err := n.startTimeout()
	if err != nil {
		return nil, err
	}
	if d > 0 {
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.MaxPayload > 0 {
		opts = append(opts, messaging.WithMaxPayload(int32(n.MaxPayload)))
	}

	return messaging.NewNatsServer(opts...)
}

func (n *NatsConfig) buildBridge(broker messaging.Broker, handler *commands.Handler) *messaging.Bridge {
	return messaging.NewBridge(broker, handler, n.subjectPrefix())
}
