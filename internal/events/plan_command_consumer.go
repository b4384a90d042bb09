package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/contract"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
)

// PlanComputer recomputes a saved plan; *application.PlanService implements it.
type PlanComputer interface {
	ComputePlan(ctx context.Context, planID uuid.UUID) (*application.PlanDTO, error)
}

// PlanCommandConsumer listens to routing commands and recomputes plans on request.
type PlanCommandConsumer struct {
	consumer *kafka.Consumer
	service  PlanComputer
	logger   *zap.Logger
}

// NewPlanCommandConsumer creates a new PlanCommandConsumer.
func NewPlanCommandConsumer(
	brokers []string,
	groupID string,
	service PlanComputer,
	logger *zap.Logger,
) *PlanCommandConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contract.TopicRoutingCommands, logger)
	return &PlanCommandConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming commands. This blocks until the context is cancelled.
func (c *PlanCommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PlanCommandConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PlanCommandConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from command topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contract.PlanRecomputeAsked:
		return c.handleRecomputeRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled command type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PlanCommandConsumer) handleRecomputeRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var cmd contract.PlanRecomputeRequestedEvent
	if err := cloudEvent.ParseData(&cmd); err != nil || cmd.PlanID == uuid.Nil {
		c.logger.Error("failed to parse PlanRecomputeRequestedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing plan recompute request",
		zap.String("plan_id", cmd.PlanID.String()),
	)

	_, err := c.service.ComputePlan(ctx, cmd.PlanID)
	if err != nil {
		var recorded *application.FailureRecordedError
		if errors.As(err, &recorded) {
			// The plan is already marked failed; a retry would record it again.
			c.logger.Warn("plan recompute failed",
				zap.String("plan_id", cmd.PlanID.String()),
				zap.Error(err),
			)
			return nil
		}
		if isPermanent(err) {
			c.logger.Warn("plan recompute rejected",
				zap.String("plan_id", cmd.PlanID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to recompute plan",
			zap.String("plan_id", cmd.PlanID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("plan recomputed",
		zap.String("plan_id", cmd.PlanID.String()),
	)
	return nil
}

// isPermanent reports errors that a retry cannot fix.
func isPermanent(err error) bool {
	var stateErr *domain.InvalidStateError
	return domain.IsNotFound(err) || domain.IsValidation(err) || errors.As(err, &stateErr)
}
