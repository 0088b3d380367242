package models

import "time"

// PortfolioContent is a block of biography text injected into every chat prompt.
type PortfolioContent struct {
	ID        int64     `db:"id" json:"id"`
	Section   string    `db:"section" json:"section"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Order     int       `db:"sort_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Event struct {
	ID        int64     `db:"id" json:"id"`
	EventName string    `db:"event_name" json:"eventName"`
	Date      string    `db:"date" json:"date"`
	Location  *string   `db:"location" json:"location"`
	TalkID    *int64    `db:"talk_id" json:"talkId"`
	Coverage  *string   `db:"coverage" json:"coverage"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Testimonial struct {
	ID        int64     `db:"id" json:"id"`
	Quote     string    `db:"quote" json:"quote"`
	Author    string    `db:"author" json:"author"`
	Role      *string   `db:"role" json:"role"`
	Company   *string   `db:"company" json:"company"`
	Order     int       `db:"sort_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
