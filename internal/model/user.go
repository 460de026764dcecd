package model

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Name   string      `gorm:"size:100;not null" json:"name"`
	Email  string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role   UserRole    `gorm:"size:20;not null" json:"role"`
	Avatar string      `gorm:"size:255" json:"avatar,omitempty"`
	Badges []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasBadge 判断用户是否已获得指定徽章
func (u *User) HasBadge(id BadgeID) bool {
	for _, b := range u.Badges {
		if b.BadgeID == id {
			return true
		}
	}
	return false
}
