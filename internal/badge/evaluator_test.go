package badge

import (
	"testing"
	"time"

	"eduverse_backend/internal/model"
)

func TestEvaluate(t *testing.T) {
	holder := &model.User{Badges: []model.UserBadge{{BadgeID: FaithfulStarter}}}

	tests := []struct {
		name   string
		event  Event
		user   *model.User
		want   model.BadgeID
		wantOK bool
	}{
		{"first module", FirstModuleCompleted, &model.User{}, FaithfulStarter, true},
		{"course completed", CourseCompleted, &model.User{}, CompletedInChrist, true},
		{"puzzle solved", PuzzleSolved, &model.User{}, PuzzleMaster, true},
		{"already held", FirstModuleCompleted, holder, "", false},
		{"unknown event", Event("login_streak"), &model.User{}, "", false},
		{"nil user", CourseCompleted, nil, CompletedInChrist, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.event, tt.user)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("Evaluate(%s) = (%q, %v), want (%q, %v)", tt.event, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	u := &model.User{UUIDBase: model.UUIDBase{ID: "u1"}}
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if !Award(u, CompletedInChrist, first) {
		t.Fatalf("first award should report a change")
	}
	if Award(u, CompletedInChrist, first.Add(time.Hour)) {
		t.Fatalf("second award should be a no-op")
	}
	if len(u.Badges) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(u.Badges))
	}
	if !u.Badges[0].EarnedAt.Equal(first) {
		t.Fatalf("earnedAt changed: %v", u.Badges[0].EarnedAt)
	}
	if u.Badges[0].UserID != "u1" {
		t.Fatalf("unexpected user id %q", u.Badges[0].UserID)
	}
}

func TestMerge(t *testing.T) {
	earnedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	statuses := Merge([]model.UserBadge{{BadgeID: PuzzleMaster, EarnedAt: earnedAt}})

	if len(statuses) != len(Catalog()) {
		t.Fatalf("expected full catalog, got %d entries", len(statuses))
	}
	for _, s := range statuses {
		if s.ID == PuzzleMaster {
			if !s.Earned || s.DateEarned == nil || !s.DateEarned.Equal(earnedAt) {
				t.Fatalf("b7 should be earned at %v, got %+v", earnedAt, s)
			}
			continue
		}
		if s.Earned || s.DateEarned != nil {
			t.Fatalf("%s should not be earned", s.ID)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Title = "changed"
	b, ok := Lookup(FaithfulStarter)
	if !ok || b.Title != "Faithful Starter" {
		t.Fatalf("catalog mutated through copy: %+v", b)
	}
}
