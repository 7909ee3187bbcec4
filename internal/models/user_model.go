package models

import "time"

// UsersTableName is the name of the table for users
var UsersTableName = "users"

// User is an account record. The hash and salt never leave the server.
type User struct {
	ID           uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	PasswordSalt string    `gorm:"column:password_salt" json:"-"`
	DateCreated  time.Time `gorm:"column:date_created" json:"date_created"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return UsersTableName
}
