package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/mail"
	"github.com/spec-kit/staffing-service/internal/observability"
	"github.com/spec-kit/staffing-service/internal/repository"
)

// NotificationService writes the audit log for domain events and mails security notices.
type NotificationService struct {
	dispatcher events.Dispatcher
	people     repository.PersonRepository
	sender     mail.Sender
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil sender disables notice mails.
func NewNotificationService(dispatcher events.Dispatcher, people repository.PersonRepository, sender mail.Sender, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		people:     people,
		sender:     sender,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers audits every event and mails a notice when a secret changes.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.handleAudit)
	n.dispatcher.Subscribe(events.EventSecretReset, n.sendSecretNotice)
	n.dispatcher.Subscribe(events.EventSecretChanged, n.sendSecretNotice)
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("credential_id", event.CredentialID),
		zap.Any("payload", event.Payload))
	return nil
}

// sendSecretNotice tells the owner that their secret changed. Delivery is best effort.
func (n *NotificationService) sendSecretNotice(ctx context.Context, event events.Event) error {
	if n.sender == nil || n.people == nil || event.CredentialID == "" {
		return nil
	}
	person, err := n.people.GetByCredentialID(ctx, event.CredentialID)
	if err != nil {
		n.logger.Debug("no contact for secret notice", zap.String("credential_id", event.CredentialID))
		return nil
	}
	msg := mail.NoticeMessage(person.Email, "Your secret was changed",
		"The secret of your account was just changed. If this was not you, request a reset immediately.\n")
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("secret notice failed", zap.String("credential_id", event.CredentialID), zap.Error(err))
	}
	return nil
}
