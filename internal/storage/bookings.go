package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakersite/internal/models"
)

const bookingColumns = `id, event_name, date, format, audience, budget, contact_email, contact_name, message, status, created_at, updated_at`

// CreateBookingInquiry stores a new inquiry; ID, timestamps and status come from the store.
func (s *Store) CreateBookingInquiry(ctx context.Context, b models.BookingInquiry) (*models.BookingInquiry, error) {
	now := time.Now().UTC()
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	id, err := insertID(ctx, s.db,
		`INSERT INTO booking_inquiries (event_name, date, format, audience, budget, contact_email, contact_name, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.EventName, b.Date, b.Format, b.Audience, b.Budget, b.ContactEmail, b.ContactName, b.Message, b.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create booking inquiry: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return &b, nil
}

func (s *Store) GetBookingInquiry(ctx context.Context, id int64) (*models.BookingInquiry, error) {
	var b models.BookingInquiry
	err := s.db.GetContext(ctx, &b, s.db.Rebind(`SELECT `+bookingColumns+` FROM booking_inquiries WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking inquiry: %w", err)
	}
	return &b, nil
}

// ListBookingInquiries returns every inquiry, newest first.
func (s *Store) ListBookingInquiries(ctx context.Context) ([]models.BookingInquiry, error) {
	items := []models.BookingInquiry{}
	if err := s.db.SelectContext(ctx, &items, `SELECT `+bookingColumns+` FROM booking_inquiries ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list booking inquiries: %w", err)
	}
	return items, nil
}

// UpdateBookingStatus sets the status and returns the updated row.
func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.BookingInquiry, error) {
	affected, err := s.exec(ctx, `UPDATE booking_inquiries SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if affected == 0 {
		// mysql reports 0 rows for a no-op update, so confirm the row is really missing
		if _, err := s.GetBookingInquiry(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.GetBookingInquiry(ctx, id)
}
