package members

import (
	"context"
	"database/sql"
	"testing"

	"github.com/tmcruz/padeldesk/internal/db"
	"github.com/tmcruz/padeldesk/internal/testutil"
)

func setupMatcherTest(t *testing.T) (*Matcher, int64) {
	t.Helper()

	database := testutil.NewTestDB(t)
	ctx := context.Background()

	owner, err := database.Queries.CreateOwner(ctx, db.CreateOwnerParams{
		Name:         "Club Owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
		Role:         "owner",
	})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	plan, err := database.Queries.CreatePlan(ctx, db.CreatePlanParams{
		OwnerID:         owner.ID,
		Name:            "Gold",
		DiscountPercent: 20,
		MonthlyFee:      35,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	seed := []db.CreateMemberParams{
		{
			OwnerID: owner.ID,
			Name:    "Ana Martins",
			Phone:   sql.NullString{String: "+351912345678", Valid: true},
			Email:   sql.NullString{String: "ana@example.com", Valid: true},
			PlanID:  sql.NullInt64{Int64: plan.ID, Valid: true},
		},
		{
			OwnerID: owner.ID,
			Name:    "Andre Costa",
			Phone:   sql.NullString{String: "+351966111222", Valid: true},
		},
		{
			OwnerID: owner.ID,
			Name:    "Bruno Silva",
		},
	}
	for _, m := range seed {
		if _, err := database.Queries.CreateMember(ctx, m); err != nil {
			t.Fatalf("create member %s: %v", m.Name, err)
		}
	}

	return NewMatcher(database.Queries), owner.ID
}

func TestMatcherFindByPhone(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	match, err := matcher.Find(context.Background(), ownerID, "", "912345")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Name != "Ana Martins" {
		t.Errorf("name = %q, want Ana Martins", match.Name)
	}
	if match.Phone != "+351912345678" {
		t.Errorf("phone = %q, want +351912345678", match.Phone)
	}
	if match.DiscountPercent != 20 {
		t.Errorf("discount = %v, want 20", match.DiscountPercent)
	}
	if match.PlanName != "Gold" {
		t.Errorf("plan = %q, want Gold", match.PlanName)
	}
}

func TestMatcherFindByPhoneWithFormatting(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	// Typed with the international prefix and separators; stored without.
	match, err := matcher.Find(context.Background(), ownerID, "", "00351 912-345-678")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match == nil || match.Name != "Ana Martins" {
		t.Fatalf("match = %+v, want Ana Martins", match)
	}
}

func TestMatcherFindByName(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	match, err := matcher.Find(context.Background(), ownerID, "bru", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match == nil || match.Name != "Bruno Silva" {
		t.Fatalf("match = %+v, want Bruno Silva", match)
	}
}

func TestMatcherFirstMatchOnly(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	// "An" matches both Ana and Andre; the first by id is suggested.
	match, err := matcher.Find(context.Background(), ownerID, "An", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match == nil || match.Name != "Ana Martins" {
		t.Fatalf("match = %+v, want first match Ana Martins", match)
	}
}

func TestMatcherPhoneWinsOverName(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	// Name points at Bruno, phone at Andre; phone is the stronger signal.
	match, err := matcher.Find(context.Background(), ownerID, "Bruno", "966111")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match == nil || match.Name != "Andre Costa" {
		t.Fatalf("match = %+v, want Andre Costa", match)
	}
}

func TestMatcherInputGates(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		typed string
		phone string
	}{
		{"single letter name", "A", ""},
		{"short phone", "", "91234"},
		{"both below gate", "B", "912"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := matcher.Find(ctx, ownerID, tt.typed, tt.phone)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if match != nil {
				t.Errorf("match = %+v, want nil below input gates", match)
			}
		})
	}
}

func TestMatcherScopedToOwner(t *testing.T) {
	matcher, _ := setupMatcherTest(t)

	match, err := matcher.Find(context.Background(), 9999, "Ana", "912345678")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match != nil {
		t.Errorf("match = %+v, want nil for foreign owner", match)
	}
}

func TestMatcherNoMatch(t *testing.T) {
	matcher, ownerID := setupMatcherTest(t)

	match, err := matcher.Find(context.Background(), ownerID, "Zacarias", "999999999")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if match != nil {
		t.Errorf("match = %+v, want nil", match)
	}
}
