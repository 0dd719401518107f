package sentiment

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sweetlayer/cakeshop/backend/internal/events"
	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

// ReviewStore is the slice of the order service the worker needs.
type ReviewStore interface {
	AttachSentiment(ctx context.Context, orderID string, s models.Sentiment) error
}

// Worker consumes review.created events and attaches sentiment to the
// reviewed order. It runs entirely off the request path.
type Worker struct {
	ch         *amqp.Channel
	queue      string
	classifier Classifier
	store      ReviewStore
	log        *slog.Logger
}

// NewWorker wires a review consumer.
func NewWorker(ch *amqp.Channel, queue string, classifier Classifier, store ReviewStore, log *slog.Logger) *Worker {
	return &Worker{
		ch:         ch,
		queue:      queue,
		classifier: classifier,
		store:      store,
		log:        log,
	}
}

// Run consumes until the context is cancelled or the channel closes.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.ch.Consume(
		w.queue,
		"sentiment-worker", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg amqp.Delivery) {
	var event events.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("invalid review event", "error", err)
		msg.Nack(false, false) // malformed, do not requeue
		return
	}

	s, err := w.classifier.Classify(ctx, event.Review)
	if err != nil {
		w.log.Error("sentiment classification failed", "order_id", event.OrderID, "error", err)
		msg.Nack(false, true) // transient, retry
		return
	}

	if err := w.store.AttachSentiment(ctx, event.OrderID, *s); err != nil {
		w.log.Error("failed to attach sentiment", "order_id", event.OrderID, "error", err)
		msg.Nack(false, true)
		return
	}

	w.log.Info("sentiment attached", "order_id", event.OrderID, "label", s.Label, "score", s.Score)
	msg.Ack(false)
}
