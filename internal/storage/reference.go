package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakersite/internal/models"
)

func (s *Store) ListPortfolioContent(ctx context.Context) ([]models.PortfolioContent, error) {
	items := []models.PortfolioContent{}
	if err := s.db.SelectContext(ctx, &items,
		`SELECT id, section, title, content, sort_order, created_at FROM portfolio_content ORDER BY sort_order ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list portfolio content: %w", err)
	}
	return items, nil
}

func (s *Store) ListTalks(ctx context.Context) ([]models.Talk, error) {
	talks := []models.Talk{}
	if err := s.db.SelectContext(ctx, &talks,
		`SELECT id, title, subtitle, abstract, key_takeaways, audience_fit, format_options, sort_order, created_at FROM talks ORDER BY sort_order ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list talks: %w", err)
	}
	return talks, nil
}

func (s *Store) GetTalk(ctx context.Context, id int64) (*models.Talk, error) {
	var t models.Talk
	err := s.db.GetContext(ctx, &t, s.db.Rebind(
		`SELECT id, title, subtitle, abstract, key_takeaways, audience_fit, format_options, sort_order, created_at FROM talks WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get talk: %w", err)
	}
	return &t, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	if err := s.db.SelectContext(ctx, &events,
		`SELECT id, event_name, date, location, talk_id, coverage, created_at FROM events ORDER BY date DESC, id ASC`); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	items := []models.Testimonial{}
	if err := s.db.SelectContext(ctx, &items,
		`SELECT id, quote, author, role, company, sort_order, created_at FROM testimonials ORDER BY sort_order ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return items, nil
}

// ReferenceData is the static site content shown on pages and fed to the chat prompt.
type ReferenceData struct {
	Portfolio    []models.PortfolioContent `json:"portfolio"`
	Talks        []models.Talk             `json:"talks"`
	Events       []models.Event            `json:"events"`
	Testimonials []models.Testimonial      `json:"testimonials"`
}

// ReplaceReferenceData swaps all reference rows for the supplied set in one transaction.
func (s *Store) ReplaceReferenceData(ctx context.Context, data ReferenceData) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"portfolio_content", "talks", "events", "testimonials"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	now := time.Now().UTC()
	for _, p := range data.Portfolio {
		if _, err = insertID(ctx, tx,
			`INSERT INTO portfolio_content (section, title, content, sort_order, created_at) VALUES (?, ?, ?, ?, ?)`,
			p.Section, p.Title, p.Content, p.Order, now); err != nil {
			return fmt.Errorf("insert portfolio %q: %w", p.Title, err)
		}
	}
	for _, t := range data.Talks {
		if _, err = insertID(ctx, tx,
			`INSERT INTO talks (title, subtitle, abstract, key_takeaways, audience_fit, format_options, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Title, t.Subtitle, t.Abstract, t.KeyTakeaways, t.AudienceFit, t.FormatOptions, t.Order, now); err != nil {
			return fmt.Errorf("insert talk %q: %w", t.Title, err)
		}
	}
	for _, e := range data.Events {
		if _, err = insertID(ctx, tx,
			`INSERT INTO events (event_name, date, location, talk_id, coverage, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			e.EventName, e.Date, e.Location, e.TalkID, e.Coverage, now); err != nil {
			return fmt.Errorf("insert event %q: %w", e.EventName, err)
		}
	}
	for _, t := range data.Testimonials {
		if _, err = insertID(ctx, tx,
			`INSERT INTO testimonials (quote, author, role, company, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.Quote, t.Author, t.Role, t.Company, t.Order, now); err != nil {
			return fmt.Errorf("insert testimonial by %q: %w", t.Author, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reference data: %w", err)
	}
	return nil
}
