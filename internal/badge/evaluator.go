package badge

import (
	"time"

	"eduverse_backend/internal/model"
)

type Event string

const (
	FirstModuleCompleted Event = "first_module_completed"
	CourseCompleted      Event = "course_completed"
	PuzzleSolved         Event = "puzzle_solved"
)

var rules = map[Event]model.BadgeID{
	FirstModuleCompleted: FaithfulStarter,
	CourseCompleted:      CompletedInChrist,
	PuzzleSolved:         PuzzleMaster,
}

// BadgeFor 返回事件对应的徽章，不考虑用户状态
func BadgeFor(event Event) (model.BadgeID, bool) {
	id, ok := rules[event]
	return id, ok
}

// Evaluate 返回本次事件应授予的徽章；用户已持有时返回 false
func Evaluate(event Event, u *model.User) (model.BadgeID, bool) {
	id, ok := BadgeFor(event)
	if !ok {
		return "", false
	}
	if u != nil && u.HasBadge(id) {
		return "", false
	}
	return id, true
}

// Award 幂等地把徽章记到用户身上，已持有时不修改获得时间
func Award(u *model.User, id model.BadgeID, now time.Time) bool {
	if u.HasBadge(id) {
		return false
	}
	u.Badges = append(u.Badges, model.UserBadge{
		UserID:   u.ID,
		BadgeID:  id,
		EarnedAt: now,
	})
	return true
}
