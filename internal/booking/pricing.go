// internal/booking/pricing.go
package booking

import "math"

// PlayersPerBooking is fixed: padel is a four-player sport, and the share
// split always divides by four no matter how many names are filled in.
const PlayersPerBooking = 4

// PlayerRate is the discount input for one of the four player slots.
type PlayerRate struct {
	IsMember        bool
	DiscountPercent float64
}

// PlayerBreakdown retains the per-player figures for display.
type PlayerBreakdown struct {
	Share    float64 `json:"share"`
	Discount float64 `json:"discount"`
	Final    float64 `json:"final"`
}

// Quote is a priced booking with its per-player breakdown.
type Quote struct {
	BasePrice      float64                            `json:"base_price"`
	PerPlayerShare float64                            `json:"per_player_share"`
	TotalDiscount  float64                            `json:"total_discount"`
	FinalPrice     float64                            `json:"final_price"`
	Players        [PlayersPerBooking]PlayerBreakdown `json:"players"`
}

// Price computes the booking price from the court's hourly rate, the
// selected duration in hours (0.5 increments), and the four player slots.
// Only members get their plan discount applied to their quarter share.
// No rounding happens here; values are rounded for presentation only.
func Price(hourlyRate, durationHours float64, players [PlayersPerBooking]PlayerRate) Quote {
	quote := Quote{
		BasePrice: durationHours * hourlyRate,
	}
	quote.PerPlayerShare = quote.BasePrice / PlayersPerBooking

	for i, player := range players {
		breakdown := PlayerBreakdown{Share: quote.PerPlayerShare}
		if player.IsMember {
			breakdown.Discount = quote.PerPlayerShare * player.DiscountPercent / 100
		}
		breakdown.Final = breakdown.Share - breakdown.Discount
		quote.Players[i] = breakdown
		quote.TotalDiscount += breakdown.Discount
	}

	quote.FinalPrice = quote.BasePrice - quote.TotalDiscount
	return quote
}

// RoundForDisplay rounds a price to two decimals for presentation. Stored
// values keep full float precision.
func RoundForDisplay(value float64) float64 {
	return math.Round(value*100) / 100
}
