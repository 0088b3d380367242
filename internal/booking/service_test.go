package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakersite/internal/apperr"
	"speakersite/internal/config"
	"speakersite/internal/logger"
	"speakersite/internal/models"
	"speakersite/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(db))
	return NewService(storage.NewStore(db), logger.Discard())
}

func validInquiry() Inquiry {
	return Inquiry{
		EventName:    "Cloud Summit",
		Date:         "2026-09-14",
		Format:       "keynote",
		Audience:     "IT leaders",
		ContactEmail: "events@example.com",
	}
}

func TestSubmitCreatesPendingInquiry(t *testing.T) {
	svc := newTestService(t)
	name := "Pat"
	blank := "  "

	in := validInquiry()
	in.ContactName = &name
	in.Message = &blank
	created, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, models.BookingPending, created.Status)
	require.NotNil(t, created.ContactName)
	assert.Equal(t, "Pat", *created.ContactName)
	assert.Nil(t, created.Message, "blank optional text is stored as null")
	assert.Nil(t, created.Budget)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(t)
	cases := map[string]struct {
		mutate func(*Inquiry)
		want   string
	}{
		"bad format":       {func(in *Inquiry) { in.Format = "webinar" }, "format must be one of keynote, talk, panel, workshop"},
		"bad email":        {func(in *Inquiry) { in.ContactEmail = "not-an-email" }, "contactEmail must be a valid email address"},
		"missing event":    {func(in *Inquiry) { in.EventName = "  " }, "eventName is required"},
		"missing date":     {func(in *Inquiry) { in.Date = "" }, "date is required"},
		"missing audience": {func(in *Inquiry) { in.Audience = "" }, "audience is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInquiry()
			tc.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
			assert.Contains(t, apperr.Message(err), tc.want)
		})
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "rejected submissions write nothing")
}

func TestSubmitAcceptsEveryFormat(t *testing.T) {
	svc := newTestService(t)
	for _, format := range []string{"keynote", "talk", "panel", "workshop"} {
		in := validInquiry()
		in.Format = format
		_, err := svc.Submit(context.Background(), in)
		assert.NoError(t, err, format)
	}
}

func TestUpdateStatusHasNoTransitionGuard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created, err := svc.Submit(ctx, validInquiry())
	require.NoError(t, err)

	for _, status := range []string{"confirmed", "declined", "pending", "declined"} {
		updated, err := svc.UpdateStatus(ctx, created.ID, status)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatus(status), updated.Status)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.BookingDeclined, list[0].Status)

	for _, bad := range []string{"archived", "", "Confirmed"} {
		_, err = svc.UpdateStatus(ctx, created.ID, bad)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument), "status %q", bad)
	}
	_, err = svc.UpdateStatus(ctx, created.ID+50, "confirmed")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
