package models

import (
	"time"
)

// UserInfo is the identity handed back by the identity provider
type UserInfo struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// User represents a user record in the users collection, keyed by uid
type User struct {
	UID          string    `json:"uid" gorm:"primaryKey;column:uid"`
	DisplayName  string    `json:"displayName" gorm:"column:display_name"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PhotoURL     string    `json:"photoURL" gorm:"column:photo_url"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"-"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// Info strips the credential columns
func (u User) Info() UserInfo {
	return UserInfo{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
	}
}
