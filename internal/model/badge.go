package model

import "time"

type BadgeID string

// Badge 徽章定义，进程内只读
type Badge struct {
	ID          BadgeID `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Message     string  `json:"message"`
	Icon        string  `json:"icon"`
}

// UserBadge 用户已获得的徽章，(UserID, BadgeID) 唯一
// swagger:model UserBadge
type UserBadge struct {
	UUIDBase
	UserID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_badge,priority:1" json:"userId"`
	BadgeID  BadgeID   `gorm:"size:20;not null;uniqueIndex:idx_user_badge,priority:2" json:"badgeId"`
	EarnedAt time.Time `gorm:"not null" json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

// BadgeStatus 徽章定义加上用户的获得状态，前端徽章面板使用
type BadgeStatus struct {
	Badge
	Earned     bool       `json:"earned"`
	DateEarned *time.Time `json:"dateEarned,omitempty"`
}
