package services

import (
	"context"

	"maintdesk/internal/models"

	"github.com/sirupsen/logrus"
)

// AssignmentNotifier delivers assignment notices to technicians. Delivery
// itself (mail, chat, push) is an external collaborator; implementations must
// tolerate a technician without contact info.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, technician *models.Technician, ticket *models.MaintenanceTicket) error
}

// NotificationService 通知服务
type NotificationService struct {
	hub    *WebSocketHub
	logger *logrus.Logger
}

// NewNotificationService creates a notifier publishing to the change feed.
// The hub may be nil, in which case notices are only logged.
func NewNotificationService(hub *WebSocketHub, logger *logrus.Logger) *NotificationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &NotificationService{hub: hub, logger: logger}
}

// NotifyAssignment announces that a ticket was assigned to a technician.
// A technician without contact info gets a warning and a no-op, never an error.
func (s *NotificationService) NotifyAssignment(ctx context.Context, technician *models.Technician, ticket *models.MaintenanceTicket) error {
	if technician == nil || ticket == nil {
		return nil
	}

	if !technician.HasContactInfo() {
		s.logger.Warnf("Technician %s has no contact info, skipping assignment notification for ticket %s",
			technician.ID, ticket.ID)
		return nil
	}

	if s.hub != nil {
		s.hub.Broadcast(EventTicketAssigned, map[string]interface{}{
			"ticket_id":       ticket.ID,
			"ticket_title":    ticket.Title,
			"technician_id":   technician.ID,
			"technician_name": technician.Name,
		})
	}

	s.logger.Infof("Notified technician %s (%s) about ticket %s", technician.Name, technician.ID, ticket.ID)
	return nil
}
