package models

import "gorm.io/gorm"

// Review is a rating one user leaves on another after a shared trip.
type Review struct {
	gorm.Model
	ReviewedUserID uint   `json:"reviewedUserId" gorm:"not null;index"`
	ReviewerID     uint   `json:"reviewerId" gorm:"not null"`
	Rating         int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment        string `json:"comment" gorm:"type:text;not null"`
	ReviewedUser   *User  `json:"reviewedUser,omitempty" gorm:"foreignKey:ReviewedUserID"`
	Reviewer       *User  `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}
