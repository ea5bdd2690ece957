package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// SuperAdminID is the seeded administrator account that can never be
// demoted or deleted.
const SuperAdminID uint = 1

type User struct {
	gorm.Model
	FirstName      string `json:"firstName" gorm:"column:first_name;not null"`
	LastName       string `json:"lastName" gorm:"column:last_name;not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	Password       string `json:"-" gorm:"-"` // transient, hashed into PasswordHash
	PasswordHash   string `json:"-" gorm:"column:password_hash;not null"`
	PhoneNumber    string `json:"phoneNumber" gorm:"column:phone_number"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Role           Role   `json:"role" gorm:"not null;default:'passenger'"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
