package models

import "time"

// UserModel represents a registered account that owns reviews.
type UserModel struct {
	Base
	Username      string     `json:"username" gorm:"uniqueIndex;not null"`
	Email         string     `json:"email"    gorm:"uniqueIndex;not null"`
	Password      string     `json:"-"        gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
}

func (UserModel) TableName() string { return "users" }

// UserSession is a server-side login session a JWT is bound to.
type UserSession struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

func (UserSession) TableName() string { return "user_sessions" }
