package service

import (
	"context"

	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/response"
)

// AlertInbox is one page of a recipient's notification inbox.
type AlertInbox struct {
	Alerts []model.Alert `json:"alerts"`
	Unread int           `json:"unread"`
}

// AlertService serves the notification inboxes, the clinician's and the
// patient's. Alerts are written by the notification worker; this service only
// reads and marks them.
type AlertService struct {
	alertRepo *repository.AlertRepository
}

// NewAlertService creates a new AlertService.
func NewAlertService(alertRepo *repository.AlertRepository) *AlertService {
	return &AlertService{alertRepo: alertRepo}
}

// List returns a page of the recipient's alerts, newest first.
func (s *AlertService) List(ctx context.Context, role model.RecipientRole, recipientID, page, perPage int) (*AlertInbox, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	alerts, total, unread, err := s.alertRepo.ListByRecipient(ctx, role, recipientID, page, perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return &AlertInbox{Alerts: alerts, Unread: unread}, pagination, nil
}

// MarkRead stamps one alert as read.
func (s *AlertService) MarkRead(ctx context.Context, role model.RecipientRole, recipientID, alertID int) error {
	return s.alertRepo.MarkRead(ctx, role, recipientID, alertID)
}

// MarkAllRead stamps every unread alert.
func (s *AlertService) MarkAllRead(ctx context.Context, role model.RecipientRole, recipientID int) error {
	return s.alertRepo.MarkAllRead(ctx, role, recipientID)
}
