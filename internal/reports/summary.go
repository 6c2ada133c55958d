// internal/reports/summary.go
package reports

import (
	"sort"

	"github.com/tmcruz/padeldesk/internal/booking"
	"github.com/tmcruz/padeldesk/internal/db"
)

// CourtRevenue is one court's slice of the revenue summary.
type CourtRevenue struct {
	CourtID   int64   `json:"court_id"`
	CourtName string  `json:"court_name"`
	Bookings  int64   `json:"bookings"`
	Revenue   float64 `json:"revenue"`
}

// EventTypeRevenue groups revenue by what the booking was for.
type EventTypeRevenue struct {
	EventType string  `json:"event_type"`
	Bookings  int64   `json:"bookings"`
	Revenue   float64 `json:"revenue"`
}

// Summary aggregates a window of confirmed bookings for the revenue report.
// Cancelled bookings never reach here; the query excludes them.
type Summary struct {
	TotalBookings  int64              `json:"total_bookings"`
	TotalRevenue   float64            `json:"total_revenue"`
	PaidRevenue    float64            `json:"paid_revenue"`
	PendingRevenue float64            `json:"pending_revenue"`
	ByCourt        []CourtRevenue     `json:"by_court"`
	ByEventType    []EventTypeRevenue `json:"by_event_type"`
}

// Summarize rolls the window's bookings into totals. Grouped rows come back
// sorted by revenue, highest first, for direct rendering.
func Summarize(rows []db.BookingWithCourt) Summary {
	summary := Summary{
		ByCourt:     []CourtRevenue{},
		ByEventType: []EventTypeRevenue{},
	}

	byCourt := make(map[int64]*CourtRevenue)
	byEvent := make(map[string]*EventTypeRevenue)

	for _, row := range rows {
		price := booking.RoundForDisplay(row.Price)

		summary.TotalBookings++
		summary.TotalRevenue += price
		switch row.PaymentStatus {
		case "paid":
			summary.PaidRevenue += price
		default:
			summary.PendingRevenue += price
		}

		court, ok := byCourt[row.CourtID]
		if !ok {
			court = &CourtRevenue{CourtID: row.CourtID, CourtName: row.CourtName}
			byCourt[row.CourtID] = court
		}
		court.Bookings++
		court.Revenue += price

		event, ok := byEvent[row.EventType]
		if !ok {
			event = &EventTypeRevenue{EventType: row.EventType}
			byEvent[row.EventType] = event
		}
		event.Bookings++
		event.Revenue += price
	}

	for _, court := range byCourt {
		court.Revenue = booking.RoundForDisplay(court.Revenue)
		summary.ByCourt = append(summary.ByCourt, *court)
	}
	for _, event := range byEvent {
		event.Revenue = booking.RoundForDisplay(event.Revenue)
		summary.ByEventType = append(summary.ByEventType, *event)
	}

	sort.Slice(summary.ByCourt, func(i, j int) bool {
		if summary.ByCourt[i].Revenue != summary.ByCourt[j].Revenue {
			return summary.ByCourt[i].Revenue > summary.ByCourt[j].Revenue
		}
		return summary.ByCourt[i].CourtID < summary.ByCourt[j].CourtID
	})
	sort.Slice(summary.ByEventType, func(i, j int) bool {
		if summary.ByEventType[i].Revenue != summary.ByEventType[j].Revenue {
			return summary.ByEventType[i].Revenue > summary.ByEventType[j].Revenue
		}
		return summary.ByEventType[i].EventType < summary.ByEventType[j].EventType
	})

	summary.TotalRevenue = booking.RoundForDisplay(summary.TotalRevenue)
	summary.PaidRevenue = booking.RoundForDisplay(summary.PaidRevenue)
	summary.PendingRevenue = booking.RoundForDisplay(summary.PendingRevenue)
	return summary
}
