// internal/scheduler/reminders.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/config"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/email"
)

const reminderJobWindow = 15 * time.Minute

// RegisterReminderJobs sets up the booking reminder sweep. Every quarter
// hour it looks for bookings starting HoursBefore from now, inside a window
// matching the sweep interval so each booking is picked up exactly once.
func RegisterReminderJobs(database *db.DB, notifier *email.BookingNotifier, cfg *config.Config) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}
	if cfg == nil || !cfg.Reminders.Enabled {
		log.Info().Msg("Booking reminders disabled")
		return nil
	}

	hoursBefore := cfg.Reminders.HoursBefore
	jobName := "booking_reminders"
	cronExpr := "*/15 * * * *"
	jobLogger := log.With().
		Str("component", "booking_reminders_job").
		Str("job_name", jobName).
		Int64("hours_before", hoursBefore).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if notifier == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email not configured")
			return
		}

		windowStart := time.Now().Add(time.Duration(hoursBefore) * time.Hour)
		windowEnd := windowStart.Add(reminderJobWindow)

		rows, err := database.Queries.ListBookingsStartingBetween(ctx, db.ListBookingsStartingBetweenParams{
			StartTime: windowStart,
			EndTime:   windowEnd,
		})
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load bookings for reminder job")
			return
		}

		for _, row := range rows {
			if err := notifier.SendReminder(ctx, row.Booking, row.CourtName); err != nil {
				jobLogger.Error().Err(err).Int64("booking_id", row.ID).Msg("Failed to send booking reminder")
			}
		}
		if len(rows) > 0 {
			jobLogger.Info().Int("bookings", len(rows)).Msg("Booking reminders processed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking reminder job: %w", err)
	}

	return nil
}
