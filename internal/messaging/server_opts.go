package messaging

import "time"

// DefaultMaxPayload caps request and event bodies. Chat adapter requests
// are a few hundred bytes.
const DefaultMaxPayload = 64 * 1024

type NatsServerOpt func(*NatsServer)

func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithListenAddr sets where chat adapters connect. Port 0 picks the NATS
// default port and -1 a random free one.
func WithListenAddr(host string, port int) NatsServerOpt {
	return func(n *NatsServer) {
		if host != "" {
			n.host = host
		}
		n.port = port
	}
}

// WithMaxPayload limits the size of a single request or event body.
func WithMaxPayload(bytes int32) NatsServerOpt {
	return func(n *NatsServer) {
		n.maxPayload = bytes
	}
}

// WithClientName names the in-process connection the bridge uses, as shown
// in the server's connection monitoring.
func WithClientName(name string) NatsServerOpt {
	return func(n *NatsServer) {
		n.clientName = name
	}
}
