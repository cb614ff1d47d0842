package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	ackWait    = 10 * time.Second
	maxDeliver = 5
	nakDelay   = 500 * time.Millisecond
)

var _ port.EventConsumer = (*Consumer)(nil)

// Consumer delivers bucket notifications from a JetStream stream to a port.MessageService
type Consumer struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	stop   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewNATSConsumer connects to NATS and JetStream
func NewNATSConsumer(cfg config.NATSConfig, logger *slog.Logger) (*Consumer, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConsumerName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	return &Consumer{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}, nil
}

// EnsureStream creates the stream receiving bucket notifications when it is missing
func (n *Consumer) EnsureStream(ctx context.Context) error {
	_, err := n.js.Stream(ctx, n.config.StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = n.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     n.config.StreamName,
		Subjects: []string{n.config.Subject},
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	n.logger.Info("NATS stream created", "stream", n.config.StreamName, "subject", n.config.Subject)
	return nil
}

// Subscribe consumes the stream until ctx is done or Close is called.
// Messages the handler rejects as invalid are terminated, other failures are redelivered.
func (n *Consumer) Subscribe(ctx context.Context, handler port.MessageService) error {
	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       ackWait,
		DeliverGroup:  n.config.DeliverGroup,
		MaxDeliver:    maxDeliver,
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return err
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}
	n.iter = iter

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", "stream", n.config.StreamName)
		for {
			msg, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					n.logger.Info("NATS subscription stopped")
					return
				}
				n.logger.Error("failed to receive message", "error", err)
				return
			}
			n.dispatch(ctx, handler, msg)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			iter.Stop()
		case <-n.stop:
		}
	}()
	return nil
}

func (n *Consumer) dispatch(ctx context.Context, handler port.MessageService, msg jetstream.Msg) {
	handleErr := handler.HandleMessage(ctx, msg.Data())
	if handleErr == nil {
		if err := msg.Ack(); err != nil {
			n.logger.Error("failed to ack message", "error", err)
		}
		return
	}

	if domain.KindOf(handleErr) == domain.KindValidation {
		n.logger.Warn("dropping invalid message", "subject", msg.Subject(), "error", handleErr)
		if err := msg.Term(); err != nil {
			n.logger.Error("failed to term message", "error", err)
		}
		return
	}

	n.logger.Warn("failed to handle message", "subject", msg.Subject(), "error", handleErr)
	if err := msg.NakWithDelay(nakDelay); err != nil {
		n.logger.Error("failed to nak message", "error", err)
	}
}

// Close stops the subscription and drains the connection
func (n *Consumer) Close() error {
	n.closeOnce.Do(func() { close(n.stop) })
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
