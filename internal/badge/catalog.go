package badge

import "eduverse_backend/internal/model"

const (
	FaithfulStarter    model.BadgeID = "b1"
	WeeklyWalker       model.BadgeID = "b2"
	CompletedInChrist  model.BadgeID = "b3"
	PrayerPartner      model.BadgeID = "b4"
	ResourceExplorer   model.BadgeID = "b5"
	AssignmentAchiever model.BadgeID = "b6"
	PuzzleMaster       model.BadgeID = "b7"
)

// 徽章定义在进程内只读，顺序即展示顺序
var catalog = []model.Badge{
	{ID: FaithfulStarter, Title: "Faithful Starter", Description: "Completed your first module!", Message: "✨ Well done! Every step forward is progress on your journey. Keep walking in truth!", Icon: "🌱"},
	{ID: WeeklyWalker, Title: "Weekly Walker", Description: "Logged in 7 days in a row!", Message: "🌟 Consistency is key! You've shown great dedication this week.", Icon: "🚶"},
	{ID: CompletedInChrist, Title: "Completed in Christ", Description: "Finished your first course!", Message: "📖 Hallelujah! You've unlocked new wisdom. 'I can do all things through Christ who strengthens me.' - Phil 4:13", Icon: "🏆"},
	{ID: PrayerPartner, Title: "Prayer Partner", Description: "Engaged in discussion forum 5 times.", Message: "🙏 Fellowship strengthens faith. Thank you for encouraging others!", Icon: "🤝"},
	{ID: ResourceExplorer, Title: "Resource Explorer", Description: "Viewed 10 different resources.", Message: "💡 Seeking knowledge is a virtue. Keep exploring the riches of His word!", Icon: "🗺️"},
	{ID: AssignmentAchiever, Title: "Assignment Achiever", Description: "Submitted 3 assignments.", Message: "✅ Diligence bears fruit! Your efforts are seen.", Icon: "✍️"},
	{ID: PuzzleMaster, Title: "Puzzle Master", Description: "Successfully completed a Bible Puzzle!", Message: "🧩 Excellent work! 'Your word is a lamp to my feet and a light to my path.' - Psalm 119:105", Icon: "🧠"},
}

var byID = func() map[model.BadgeID]model.Badge {
	m := make(map[model.BadgeID]model.Badge, len(catalog))
	for _, b := range catalog {
		m[b.ID] = b
	}
	return m
}()

// Catalog 返回徽章定义的副本
func Catalog() []model.Badge {
	out := make([]model.Badge, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id model.BadgeID) (model.Badge, bool) {
	b, ok := byID[id]
	return b, ok
}

// Merge 把用户已获得的徽章合并进完整目录
func Merge(earned []model.UserBadge) []model.BadgeStatus {
	earnedAt := make(map[model.BadgeID]model.UserBadge, len(earned))
	for _, ub := range earned {
		earnedAt[ub.BadgeID] = ub
	}
	out := make([]model.BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		status := model.BadgeStatus{Badge: b}
		if ub, ok := earnedAt[b.ID]; ok {
			t := ub.EarnedAt
			status.Earned = true
			status.DateEarned = &t
		}
		out = append(out, status)
	}
	return out
}
