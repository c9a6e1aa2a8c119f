package services

import (
	"context"
	"time"

	"market-service/internal/domain"
	rabbit "market-service/internal/infra/rabbitmq"

	"github.com/sirupsen/logrus"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint64
	Role   domain.Role
}

const publishTimeout = 2 * time.Second

// publish sends an event without letting broker trouble fail the caller.
func publish(ctx context.Context, pub rabbit.PublisherInterface, log *logrus.Entry, routingKey string, evt any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, routingKey, evt); err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Warn("failed to publish event")
	}
}

// productCacheInvalidator is implemented by cached product repositories.
type productCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...uint64)
}
