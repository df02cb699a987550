package model

import "time"

// EmailAddress is an address owned by a user
type EmailAddress struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;index"`
	Email     string    `gorm:"column:email"`
	Primary   bool      `gorm:"column:is_primary"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (EmailAddress) TableName() string {
	return "email_addresses"
}

// PhoneNumber is a phone number owned by a user
type PhoneNumber struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;index"`
	Number    string    `gorm:"column:number"`
	Type      PhoneType `gorm:"column:type;type:text"`
	Primary   bool      `gorm:"column:is_primary"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// Address is a postal address owned by a user
type Address struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	UserID     uint      `gorm:"column:user_id;index"`
	Address1   string    `gorm:"column:address1"`
	Address2   string    `gorm:"column:address2"`
	City       string    `gorm:"column:city"`
	State      string    `gorm:"column:state"`
	PostalCode string    `gorm:"column:postal_code"`
	Country    string    `gorm:"column:country"`
	Primary    bool      `gorm:"column:is_primary"`
	Active     bool      `gorm:"column:active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Address) TableName() string {
	return "addresses"
}
