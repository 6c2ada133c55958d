package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

type BookingDetails struct {
	ClubName  string
	Court     string
	Date      string
	TimeRange string
	EventType string
	Price     string
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
	return date, timeRange
}

func EventTypeLabel(eventType string) string {
	switch strings.TrimSpace(eventType) {
	case "match":
		return "Match"
	case "tournament":
		return "Tournament"
	case "training":
		return "Training"
	case "open_game":
		return "Open Game"
	case "maintenance":
		return "Maintenance"
	case "event":
		return "Event"
	}
	return "Booking"
}

func BuildBookingConfirmation(details BookingDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}
	court := strings.TrimSpace(details.Court)
	if court == "" {
		court = "TBD"
	}

	subject := fmt.Sprintf("Booking Confirmed - %s", clubName)

	lines := []string{
		"Your court booking is confirmed.",
		"",
		fmt.Sprintf("Club: %s", clubName),
		fmt.Sprintf("Court: %s", court),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
		fmt.Sprintf("Type: %s", EventTypeLabel(details.EventType)),
	}
	if price := strings.TrimSpace(details.Price); price != "" {
		lines = append(lines, fmt.Sprintf("Price: %s", price))
	}

	return Message{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildBookingCancellation(details BookingDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}
	court := strings.TrimSpace(details.Court)
	if court == "" {
		court = "TBD"
	}
	date := strings.TrimSpace(details.Date)
	if date == "" {
		date = "TBD"
	}
	timeRange := strings.TrimSpace(details.TimeRange)
	if timeRange == "" {
		timeRange = "TBD"
	}

	subject := fmt.Sprintf("Booking Cancelled - %s", clubName)

	lines := []string{
		"Your court booking has been cancelled.",
		"",
		fmt.Sprintf("Club: %s", clubName),
		fmt.Sprintf("Court: %s", court),
		fmt.Sprintf("Date: %s", date),
		fmt.Sprintf("Time: %s", timeRange),
	}

	return Message{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildBookingReminder(details BookingDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}
	court := strings.TrimSpace(details.Court)
	if court == "" {
		court = "TBD"
	}

	subject := fmt.Sprintf("Upcoming Booking Reminder - %s", clubName)

	lines := []string{
		"Reminder: your court booking is coming up.",
		"",
		fmt.Sprintf("Club: %s", clubName),
		fmt.Sprintf("Court: %s", court),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
		fmt.Sprintf("Type: %s", EventTypeLabel(details.EventType)),
	}

	return Message{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}
