package models

import "gorm.io/gorm"

// Message is a direct message between two users, delivered in real time
// when the receiver is connected and kept as history either way.
type Message struct {
	gorm.Model
	SenderID   uint   `json:"senderId" gorm:"not null;index"`
	ReceiverID uint   `json:"receiverId" gorm:"not null;index"`
	Body       string `json:"body" gorm:"type:text;not null"`
	Sender     *User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver   *User  `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
