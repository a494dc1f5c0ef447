package alerts

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/models"
)

// AlertStore is the persistence surface the lifecycle manager drives
type AlertStore interface {
	CreateFireAlert(ctx context.Context, event *models.FireEvent, alert *models.Alert) error
	GetAlert(ctx context.Context, id int64) (*models.Alert, error)
	ListAlerts(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64, at time.Time) (bool, error)
	CloseAlert(ctx context.Context, id int64, status models.AlertStatus, at time.Time) (bool, error)
	ResolveFireEvent(ctx context.Context, id int64) error
	CountOpenAlertsForEvent(ctx context.Context, fireEventID int64) (int, error)
}

// Notifier receives alerts after their state is durably persisted
type Notifier interface {
	AlertCreated(alert *models.Alert)
	AlertChanged(alert *models.Alert)
}

// Service owns the alert state machine:
//
//	active -> acknowledged -> resolved | false_alarm
//	active ----------------> resolved | false_alarm
//
// Acknowledging never closes an alert; resolved and false_alarm are terminal.
// Transitions race safely: the store only updates rows still in an eligible
// state, and a lost race degrades to an idempotent no-op.
type Service struct {
	store    AlertStore
	notifier Notifier
	now      func() time.Time
}

func NewService(store AlertStore, notifier Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateFireAlert persists a fire event with its alert and broadcasts the
// creation. The alert always starts active.
func (s *Service) CreateFireAlert(ctx context.Context, event *models.FireEvent, alert *models.Alert) error {
	if err := s.store.CreateFireAlert(ctx, event, alert); err != nil {
		return err
	}

	log.Info().
		Int64("alert_id", alert.ID).
		Int64("fire_event_id", event.ID).
		Str("event_type", alert.EventType).
		Str("severity", alert.Severity.String()).
		Int64("floor_id", alert.FloorID).
		Int("occupancy_count", alert.OccupancyCount).
		Msg("Fire alert created")

	s.notifier.AlertCreated(alert)
	return nil
}

// Get returns a single alert
func (s *Service) Get(ctx context.Context, id int64) (*models.Alert, error) {
	return s.store.GetAlert(ctx, id)
}

// List returns alerts matching the filters, newest first
func (s *Service) List(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error) {
	return s.store.ListAlerts(ctx, filters)
}

// Acknowledge marks an active alert as seen by an operator. Acknowledging an
// already-acknowledged or terminal alert is an idempotent no-op: the alert is
// returned unchanged and nothing broadcasts.
func (s *Service) Acknowledge(ctx context.Context, id int64) (*models.Alert, error) {
	updated, err := s.store.AcknowledgeAlert(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	alert, err := s.store.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	if !updated {
		// Already acknowledged or terminal: idempotent no-op
		return alert, nil
	}

	log.Info().Int64("alert_id", id).Msg("Alert acknowledged")
	s.notifier.AlertChanged(alert)
	return alert, nil
}

// Resolve closes an alert as a confirmed, handled incident
func (s *Service) Resolve(ctx context.Context, id int64) (*models.Alert, error) {
	return s.close(ctx, id, models.AlertStatusResolved)
}

// FalseAlarm closes an alert as a misdetection
func (s *Service) FalseAlarm(ctx context.Context, id int64) (*models.Alert, error) {
	return s.close(ctx, id, models.AlertStatusFalseAlarm)
}

func (s *Service) close(ctx context.Context, id int64, status models.AlertStatus) (*models.Alert, error) {
	updated, err := s.store.CloseAlert(ctx, id, status, s.now())
	if err != nil {
		return nil, err
	}

	alert, err := s.store.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	if !updated {
		// Already terminal: idempotent no-op, even when the requested
		// terminal status differs from the recorded one
		return alert, nil
	}

	log.Info().
		Int64("alert_id", id).
		Str("status", status.String()).
		Msg("Alert closed")
	s.notifier.AlertChanged(alert)

	if alert.FireEventID != nil {
		s.resolveEventIfQuiet(ctx, *alert.FireEventID)
	}
	return alert, nil
}

// resolveEventIfQuiet marks the owning fire event resolved once its last open
// alert closes. Failures here are logged, not surfaced: the alert transition
// already committed.
func (s *Service) resolveEventIfQuiet(ctx context.Context, fireEventID int64) {
	open, err := s.store.CountOpenAlertsForEvent(ctx, fireEventID)
	if err != nil {
		log.Error().Err(err).Int64("fire_event_id", fireEventID).Msg("Failed to count open alerts for event")
		return
	}
	if open > 0 {
		return
	}
	if err := s.store.ResolveFireEvent(ctx, fireEventID); err != nil {
		log.Error().Err(err).Int64("fire_event_id", fireEventID).Msg("Failed to resolve fire event")
		return
	}
	log.Info().Int64("fire_event_id", fireEventID).Msg("Fire event resolved, no open alerts remain")
}
