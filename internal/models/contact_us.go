package models

import "gorm.io/gorm"

// ContactUs is a message submitted through the public contact form.
type ContactUs struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null"`
	Message string `json:"message" gorm:"type:text;not null"`
}

// TableName specifies the table name
func (ContactUs) TableName() string {
	return "contact_us"
}
