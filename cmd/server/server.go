// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tmcruz/padeldesk/internal/api"
	"github.com/tmcruz/padeldesk/internal/api/auth"
	"github.com/tmcruz/padeldesk/internal/api/bookings"
	"github.com/tmcruz/padeldesk/internal/api/calendar"
	"github.com/tmcruz/padeldesk/internal/api/classes"
	"github.com/tmcruz/padeldesk/internal/api/courts"
	apimembers "github.com/tmcruz/padeldesk/internal/api/members"
	"github.com/tmcruz/padeldesk/internal/api/operatinghours"
	"github.com/tmcruz/padeldesk/internal/api/plans"
	"github.com/tmcruz/padeldesk/internal/api/reports"
	"github.com/tmcruz/padeldesk/internal/config"
	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/email"
)

func newServer(cfg *config.Config, database *db.DB, notifier *email.BookingNotifier) *http.Server {
	auth.InitHandlers(database.Queries, cfg)
	bookings.InitHandlers(database.Queries, notifier)
	calendar.InitHandlers(database.Queries)
	classes.InitHandlers(database)
	courts.InitHandlers(database.Queries)
	apimembers.InitHandlers(database.Queries, cfg.App.PhoneRegion)
	operatinghours.InitHandlers(database.Queries)
	plans.InitHandlers(database.Queries)
	reports.InitHandlers(database.Queries)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes stay outside the auth wall
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)

	// Everything else requires a session
	protected := http.NewServeMux()

	protected.HandleFunc("GET /api/v1/auth/me", auth.HandleCurrentUser)

	protected.HandleFunc("GET /api/v1/calendar", calendar.HandleCalendarDay)

	protected.HandleFunc("GET /api/v1/courts", courts.HandleCourtsList)
	protected.HandleFunc("POST /api/v1/courts", courts.HandleCourtCreate)
	protected.HandleFunc("PUT /api/v1/courts/{id}", courts.HandleCourtUpdate)

	protected.HandleFunc("GET /api/v1/operating-hours", operatinghours.HandleOperatingHoursList)
	protected.HandleFunc("PUT /api/v1/operating-hours/{day_of_week}", operatinghours.HandleOperatingHoursUpdate)

	protected.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	protected.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	protected.HandleFunc("POST /api/v1/bookings/quote", bookings.HandleBookingQuote)
	protected.HandleFunc("GET /api/v1/bookings/{id}", bookings.HandleBookingGet)
	protected.HandleFunc("PUT /api/v1/bookings/{id}", bookings.HandleBookingUpdate)
	protected.HandleFunc("DELETE /api/v1/bookings/{id}", bookings.HandleBookingDelete)
	protected.HandleFunc("POST /api/v1/bookings/{id}/move", bookings.HandleBookingMove)
	protected.HandleFunc("POST /api/v1/bookings/{id}/cancel", bookings.HandleBookingCancel)

	protected.HandleFunc("GET /api/v1/members", apimembers.HandleMembersList)
	protected.HandleFunc("POST /api/v1/members", apimembers.HandleMemberCreate)
	protected.HandleFunc("GET /api/v1/members/search", apimembers.HandleMembersSearch)
	protected.HandleFunc("GET /api/v1/members/match", apimembers.HandleMemberMatch)

	protected.HandleFunc("GET /api/v1/plans", plans.HandlePlansList)
	protected.HandleFunc("POST /api/v1/plans", plans.HandlePlanCreate)

	protected.HandleFunc("GET /api/v1/classes", classes.HandleClassesList)
	protected.HandleFunc("POST /api/v1/classes", classes.HandleClassCreate)
	protected.HandleFunc("POST /api/v1/classes/{id}/schedule", classes.HandleClassSchedule)

	protected.HandleFunc("GET /api/v1/reports/revenue", reports.HandleRevenueReport)

	mux.Handle("/api/v1/", api.WithRequiredAuth(protected))
}
