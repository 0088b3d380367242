package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"speakersite/internal/apperr"
	"speakersite/internal/models"
	"speakersite/internal/storage"
)

// Inquiry is the submit payload.
type Inquiry struct {
	EventName    string  `json:"eventName" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Format       string  `json:"format" validate:"required,oneof=keynote talk panel workshop"`
	Audience     string  `json:"audience" validate:"required"`
	Budget       *string `json:"budget"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactName  *string `json:"contactName"`
	Message      *string `json:"message"`
}

type Service struct {
	store    *storage.Store
	validate *validator.Validate
	log      *logrus.Logger
}

func NewService(store *storage.Store, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// Submit validates the inquiry and stores it as pending.
func (s *Service) Submit(ctx context.Context, in Inquiry) (*models.BookingInquiry, error) {
	const op = "booking.Submit"
	in.EventName = strings.TrimSpace(in.EventName)
	in.Date = strings.TrimSpace(in.Date)
	in.Audience = strings.TrimSpace(in.Audience)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.E(apperr.CodeInvalidArgument, op, describe(err), err)
	}

	created, err := s.store.CreateBookingInquiry(ctx, models.BookingInquiry{
		EventName:    in.EventName,
		Date:         in.Date,
		Format:       models.BookingFormat(in.Format),
		Audience:     in.Audience,
		Budget:       optional(in.Budget),
		ContactEmail: in.ContactEmail,
		ContactName:  optional(in.ContactName),
		Message:      optional(in.Message),
		Status:       models.BookingPending,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"inquiry_id": created.ID, "format": created.Format}).Info("booking inquiry received")
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]models.BookingInquiry, error) {
	return s.store.ListBookingInquiries(ctx)
}

// UpdateStatus moves an inquiry to any status. There is no transition guard.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*models.BookingInquiry, error) {
	const op = "booking.UpdateStatus"
	if id <= 0 {
		return nil, apperr.Invalid(op, "id must be a positive integer")
	}
	next := models.BookingStatus(status)
	if !next.Valid() {
		return nil, apperr.Invalid(op, "status must be one of pending, confirmed, declined")
	}
	updated, err := s.store.UpdateBookingStatus(ctx, id, next)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(op, "booking inquiry not found")
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"inquiry_id": id, "status": status}).Info("booking status updated")
	return updated, nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// describe turns validator errors into a client message naming the bad fields.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid booking inquiry"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email address")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
