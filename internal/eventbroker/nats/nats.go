package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/trunov/resizer/internal/config"
	"github.com/trunov/resizer/internal/entities"
	"go.uber.org/zap"
)

// MessageHandler processes one storage notification document.
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte) error
}

// Consumer reads bucket notifications (MinIO's NATS target) from a JetStream stream.
type Consumer struct {
	logger *zap.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
	iter   jetstream.MessagesContext
	wg     sync.WaitGroup
}

func NewConsumer(cfg config.NATSConfig, logger *zap.Logger) (*Consumer, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConsumerName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
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
	}, nil
}

// Subscribe starts delivering messages to handler in the background.
// Handled messages are acked, failed ones are nak'ed for redelivery and
// permanent failures are terminated.
func (n *Consumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	consumerCfg := jetstream.ConsumerConfig{
		Durable:       n.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: n.config.Subject,
		AckWait:       time.Minute,
		MaxDeliver:    3,
		BackOff:       []time.Duration{time.Second, 5 * time.Second},
	}

	cons, err := n.js.CreateOrUpdateConsumer(ctx, n.config.StreamName, consumerCfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	iter, err := cons.Messages()
	if err != nil {
		return fmt.Errorf("failed to start message iterator: %w", err)
	}
	n.iter = iter

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.logger.Info("NATS subscription started", zap.String("stream", n.config.StreamName))
		for {
			msg, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil {
					n.logger.Info("NATS subscription stopped")
					return
				}
				n.logger.Error("failed to receive message", zap.Error(err))
				return
			}

			handleErr := handler.HandleMessage(ctx, msg.Data())
			if errors.Is(handleErr, entities.ErrPermanent) {
				if errTerm := msg.Term(); errTerm != nil {
					n.logger.Error("failed to terminate message", zap.Error(errTerm))
				}
				n.logger.Error("dropping message that cannot succeed", zap.Error(handleErr))
				continue
			}
			if handleErr != nil {
				if errNak := msg.Nak(); errNak != nil {
					n.logger.Error("failed to nak message", zap.Error(errNak))
				}
				n.logger.Warn("failed to handle message", zap.Error(handleErr))
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				n.logger.Error("failed to ack message", zap.Error(ackErr))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		iter.Stop()
	}()
	return nil
}

// Close graceful shutdown
func (n *Consumer) Close() error {
	if n.iter != nil {
		n.iter.Stop()
	}

	n.wg.Wait()

	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
