// internal/members/match.go
package members

import (
	"context"

	"github.com/tmcruz/padeldesk/internal/db"
)

const (
	// Matching gates: shorter inputs produce too many false positives to
	// be worth a round trip, so the assistant stays quiet below these.
	minNameChars  = 2
	minPhoneChars = 6

	searchLimit = 5
)

// Match is the member suggestion the assistant fills a player slot with.
type Match struct {
	MemberID        int64   `json:"member_id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	PlanName        string  `json:"plan_name,omitempty"`
}

// Matcher looks up members for the booking form's player slots.
type Matcher struct {
	queries *db.Queries
}

func NewMatcher(queries *db.Queries) *Matcher {
	return &Matcher{queries: queries}
}

// Find resolves a player slot's typed name and phone against the owner's
// member list. Phone wins when both inputs pass their gate, since a phone
// identifies a person where a first name rarely does. Only the first match
// in id order is suggested; the rest are noise the front desk would have
// to wade through mid-booking. Returns nil when neither input passes its
// gate or when nothing matches.
func (m *Matcher) Find(ctx context.Context, ownerID int64, name, phone string) (*Match, error) {
	normalized := NormalizePhone(phone)

	if len(normalized) >= minPhoneChars {
		found, err := m.queries.SearchMembersByPhone(ctx, db.SearchMembersByPhoneParams{
			OwnerID: ownerID,
			Phone:   normalized,
			Limit:   searchLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return fromMember(found[0]), nil
		}
	}

	if len(name) >= minNameChars {
		found, err := m.queries.SearchMembersByName(ctx, db.SearchMembersByNameParams{
			OwnerID: ownerID,
			Name:    name,
			Limit:   searchLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return fromMember(found[0]), nil
		}
	}

	return nil, nil
}

func fromMember(m db.MemberWithPlan) *Match {
	match := &Match{
		MemberID: m.ID,
		Name:     m.Name,
	}
	if m.Phone.Valid {
		match.Phone = m.Phone.String
	}
	if m.Email.Valid {
		match.Email = m.Email.String
	}
	if m.PlanName.Valid {
		match.PlanName = m.PlanName.String
	}
	if m.PlanDiscount.Valid {
		match.DiscountPercent = m.PlanDiscount.Float64
	}
	return match
}
