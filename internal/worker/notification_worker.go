package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
)

// NotificationWorker consumes the notifications queue, persists alert rows,
// and publishes each event on the recipient's PubSub channel for live
// delivery over WebSocket.
type NotificationWorker struct {
	alertRepo *repository.AlertRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(alertRepo *repository.AlertRepository, rdb *redis.Client, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		alertRepo: alertRepo,
		rdb:       rdb,
		log:       log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *NotificationWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.NotificationsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var ev engine.Event
	if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.deliver(ctx, &ev); err != nil {
		w.log.Error().Err(err).
			Str("assessment_id", ev.AssessmentID.String()).
			Str("type", string(ev.Type)).
			Msg("Deliver error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.NotificationsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// deliver writes the inbox row and, for clinician recipients, pushes the
// live event. The PubSub publish is best-effort: the inbox row is the
// durable record.
func (w *NotificationWorker) deliver(ctx context.Context, ev *engine.Event) error {
	alert := buildAlert(ev)
	if err := w.alertRepo.Insert(ctx, alert); err != nil {
		return err
	}

	// Only clinician dashboards hold a live stream; the patient portal
	// polls its inbox.
	if alert.RecipientRole != model.RecipientPsychologist {
		return nil
	}
	channel := config.CacheKey.PsychologistAlertChannel(ev.PsychologistID)
	if err := w.rdb.Publish(ctx, channel, alert.Payload).Err(); err != nil {
		w.log.Warn().Err(err).Str("channel", channel).Msg("Publish error, live push skipped")
	}
	return nil
}

// buildAlert routes an event to its interested party: completion goes to the
// assigning clinician, evaluation to the respondent.
func buildAlert(ev *engine.Event) *model.Alert {
	payload, _ := json.Marshal(ev)

	switch ev.Type {
	case engine.EventAssessmentEvaluated:
		return &model.Alert{
			RecipientRole: model.RecipientPatient,
			RecipientID:   ev.PatientID,
			Category:      model.AlertCategoryEvaluated,
			Message:       fmt.Sprintf("Tu test %s fue evaluado.", ev.AssessmentID),
			Payload:       payload,
		}
	default:
		return &model.Alert{
			RecipientRole: model.RecipientPsychologist,
			RecipientID:   ev.PsychologistID,
			Category:      model.AlertCategoryCompleted,
			Message:       fmt.Sprintf("El paciente %d completó el test %s.", ev.PatientID, ev.AssessmentID),
			Payload:       payload,
		}
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *NotificationWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.NotificationsQueue).Result()
		if err != nil {
			break
		}

		var ev engine.Event
		if err := json.Unmarshal([]byte(result), &ev); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.deliver(ctx, &ev); err != nil {
			w.log.Error().Err(err).Msg("Drain deliver error")
			w.rdb.RPush(ctx, config.WorkerKey.NotificationsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
