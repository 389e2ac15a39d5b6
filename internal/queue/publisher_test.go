package queue

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cidade-aberta/internal/logger"
)

// silentBroker accepts TCP connections and never speaks AMQP.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishGivesUpOnSilentBroker(t *testing.T) {
	p := NewPublisher(silentBroker(t), "notificacoes", logger.Discard())
	p.DialTimeout = 200 * time.Millisecond

	start := time.Now()
	err := p.Publish(context.Background(), Notification{Kind: KindOcorrenciaCriada, Codigo: "STM000001"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPublishHonoursContextDeadline(t *testing.T) {
	p := NewPublisher(silentBroker(t), "notificacoes", logger.Discard())
	p.DialTimeout = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.Error(t, p.Publish(ctx, Notification{Kind: KindContatoRecebido}))
	assert.Less(t, time.Since(start), 5*time.Second)

	done, stop := context.WithCancel(context.Background())
	stop()
	assert.ErrorIs(t, p.Publish(done, Notification{Kind: KindContatoRecebido}), context.Canceled)
}
