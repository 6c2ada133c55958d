package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tmcruz/padeldesk/internal/db"
)

const notifyTimeout = 5 * time.Second

// BookingNotifier resolves booking players to member email addresses and
// sends the booking lifecycle emails. Players without a matching member on
// file, or members without an email, are skipped silently.
type BookingNotifier struct {
	queries  *db.Queries
	sender   EmailSender
	clubName string
}

func NewBookingNotifier(q *db.Queries, sender EmailSender, clubName string) *BookingNotifier {
	if q == nil || sender == nil {
		return nil
	}
	return &BookingNotifier{queries: q, sender: sender, clubName: clubName}
}

// BookingConfirmed sends confirmation emails asynchronously; the booking
// response never waits on SES.
func (n *BookingNotifier) BookingConfirmed(b db.Booking, courtName string) {
	if n == nil {
		return
	}
	date, timeRange := FormatDateTimeRange(b.StartTime, b.EndTime)
	msg := BuildBookingConfirmation(BookingDetails{
		ClubName:  n.clubName,
		Court:     courtName,
		Date:      date,
		TimeRange: timeRange,
		EventType: b.EventType,
	})
	n.sendToPlayers(b, msg)
}

// BookingCancelled sends cancellation notices asynchronously.
func (n *BookingNotifier) BookingCancelled(b db.Booking, courtName string) {
	if n == nil {
		return
	}
	date, timeRange := FormatDateTimeRange(b.StartTime, b.EndTime)
	msg := BuildBookingCancellation(BookingDetails{
		ClubName:  n.clubName,
		Court:     courtName,
		Date:      date,
		TimeRange: timeRange,
		EventType: b.EventType,
	})
	n.sendToPlayers(b, msg)
}

// SendReminder delivers a reminder synchronously; the scheduler job owns
// the context and its deadline.
func (n *BookingNotifier) SendReminder(ctx context.Context, b db.Booking, courtName string) error {
	if n == nil {
		return nil
	}
	date, timeRange := FormatDateTimeRange(b.StartTime, b.EndTime)
	msg := BuildBookingReminder(BookingDetails{
		ClubName:  n.clubName,
		Court:     courtName,
		Date:      date,
		TimeRange: timeRange,
		EventType: b.EventType,
	})

	var firstErr error
	for _, recipient := range n.recipients(ctx, b) {
		if err := n.sender.Send(ctx, recipient, msg.Subject, msg.Body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *BookingNotifier) sendToPlayers(b db.Booking, msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		for _, recipient := range n.recipients(ctx, b) {
			if err := n.sender.Send(ctx, recipient, msg.Subject, msg.Body); err != nil {
				log.Error().Err(err).Int64("booking_id", b.ID).Msg("Failed to send booking email")
			}
		}
	}()
}

// recipients maps the booking's player phones onto member records with an
// email address, deduplicated.
func (n *BookingNotifier) recipients(ctx context.Context, b db.Booking) []string {
	seen := make(map[string]struct{}, 4)
	var recipients []string

	for _, player := range b.Players {
		phone := strings.TrimSpace(player.Phone)
		if phone == "" {
			continue
		}

		matches, err := n.queries.SearchMembersByPhone(ctx, db.SearchMembersByPhoneParams{
			OwnerID: b.OwnerID,
			Phone:   phone,
			Limit:   1,
		})
		if err != nil {
			log.Warn().Err(err).Int64("booking_id", b.ID).Msg("Failed to resolve player for email")
			continue
		}
		if len(matches) == 0 || !matches[0].Email.Valid {
			continue
		}

		email := strings.TrimSpace(matches[0].Email.String)
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	return recipients
}
