package messaging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-testutil"
)

func startTestServer(t *testing.T, opts ...NatsServerOpt) *NatsServer {
	t.Helper()
	opts = append([]NatsServerOpt{WithListenAddr("", server.RANDOM_PORT), WithStartTimeout(5 * time.Second)}, opts...)
	s, err := NewNatsServer(opts...)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-s.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("server never became ready")
	}
	return s
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithListenAddr("", server.RANDOM_PORT))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Subscribe("fate.action.*", func(string, []byte) []byte { return nil })
	testutil.AssertErrorContains(t, err, "not started")

	err = s.Publish("fate.event.dmg", []byte("{}"))
	testutil.AssertErrorContains(t, err, "not started")
}

func TestNatsServer_RequestReply(t *testing.T) {
	s := startTestServer(t)

	unsubscribe, err := s.Subscribe("fate.action.*", func(subject string, data []byte) []byte {
		return append([]byte(subject+":"), data...)
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer unsubscribe()

	client, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connecting client: %v", err)
	}
	defer client.Close()

	msg, err := client.Request("fate.action.hp", []byte("ping"), 5*time.Second)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	testutil.AssertEqual(t, "reply", string(msg.Data), "fate.action.hp:ping")
}

func TestNatsServer_Publish(t *testing.T) {
	s := startTestServer(t)

	client, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connecting client: %v", err)
	}
	defer client.Close()

	sub, err := client.SubscribeSync("fate.event.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("flushing: %v", err)
	}

	if err := s.Publish("fate.event.heal", []byte("healed")); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("waiting for event: %v", err)
	}
	testutil.AssertEqual(t, "subject", msg.Subject, "fate.event.heal")
	testutil.AssertEqual(t, "data", string(msg.Data), "healed")
}

func TestNatsServer_MaxPayload(t *testing.T) {
	s := startTestServer(t, WithMaxPayload(1024))

	if err := s.Publish("fate.event.dmg", bytes.Repeat([]byte("x"), 512)); err != nil {
		t.Fatalf("small event should publish: %v", err)
	}

	err := s.Publish("fate.event.dmg", bytes.Repeat([]byte("x"), 2048))
	if !errors.Is(err, nats.ErrMaxPayload) {
		t.Errorf("expected nats.ErrMaxPayload, got %v", err)
	}
}
