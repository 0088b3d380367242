package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingDeclined  BookingStatus = "declined"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingDeclined:
		return true
	}
	return false
}

type BookingFormat string

const (
	FormatKeynote  BookingFormat = "keynote"
	FormatTalk     BookingFormat = "talk"
	FormatPanel    BookingFormat = "panel"
	FormatWorkshop BookingFormat = "workshop"
)

// BookingInquiry is a prospective event request submitted by a visitor.
type BookingInquiry struct {
	ID           int64         `db:"id" json:"id"`
	EventName    string        `db:"event_name" json:"eventName"`
	Date         string        `db:"date" json:"date"`
	Format       BookingFormat `db:"format" json:"format"`
	Audience     string        `db:"audience" json:"audience"`
	Budget       *string       `db:"budget" json:"budget"`
	ContactEmail string        `db:"contact_email" json:"contactEmail"`
	ContactName  *string       `db:"contact_name" json:"contactName"`
	Message      *string       `db:"message" json:"message"`
	Status       BookingStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}
