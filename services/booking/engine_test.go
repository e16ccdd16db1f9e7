package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"chairtime/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCalendar struct {
	busy       []models.TimeRange
	busyCalls  int
	created    []models.AppointmentRequest
	deleted    []string
	failBusy   error
	failCreate error
}

func (f *fakeCalendar) BusyIntervals(_ context.Context, _, _ time.Time) ([]models.TimeRange, error) {
	f.busyCalls++
	if f.failBusy != nil {
		return nil, f.failBusy
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, req models.AppointmentRequest) (string, error) {
	if f.failCreate != nil {
		return "", f.failCreate
	}
	f.created = append(f.created, req)
	return "evt-1", nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeRepo struct {
	bookings map[string]*models.Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*models.Booking)}
}

func (f *fakeRepo) Create(b *models.Booking) error {
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeRepo) Update(b *models.Booking) error {
	if _, ok := f.bookings[b.ID]; !ok {
		return errors.New("booking not found")
	}
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeRepo) UpcomingByUser(userID string) ([]models.Booking, error) {
	var upcoming []models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID && b.Status == models.BookingStatusConfirmed {
			upcoming = append(upcoming, *b)
		}
	}
	return upcoming, nil
}

type fakeReminders struct {
	scheduled []models.Booking
}

func (f *fakeReminders) Schedule(_ context.Context, b models.Booking) error {
	f.scheduled = append(f.scheduled, b)
	return nil
}

// testEngine books Tuesday 2026-09-01, business hours 09:00-18:00 UTC,
// with "now" frozen at 08:00 that morning.
func testEngine(t *testing.T, cal *fakeCalendar) (*DefaultEngine, *fakeRepo, *fakeReminders) {
	t.Helper()
	hours, err := ParseBusinessHours("09:00", "18:00")
	require.NoError(t, err)

	repo := newFakeRepo()
	reminders := &fakeReminders{}
	engine := &DefaultEngine{
		Calendar:       cal,
		Repo:           repo,
		Reminders:      reminders,
		Hours:          hours,
		MaxSuggestions: 3,
		Location:       time.UTC,
		Now: func() time.Time {
			return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
		},
	}
	return engine, repo, reminders
}

func request(hour int) models.AppointmentRequest {
	return models.AppointmentRequest{
		UserID:          "user-1",
		CustomerName:    "Customer",
		Start:           time.Date(2026, 9, 1, hour, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		ServiceType:     "Haircut",
	}
}

func TestBookConfirmsFreeSlot(t *testing.T) {
	cal := &fakeCalendar{}
	engine, repo, reminders := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)

	assert.Equal(t, OutcomeConfirmed, result.Outcome)
	require.NotNil(t, result.Booking)
	assert.Equal(t, "evt-1", result.Booking.EventID)
	assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)

	require.Len(t, cal.created, 1)
	assert.Equal(t, 14, cal.created[0].Start.Hour())
	assert.Equal(t, 15, cal.created[0].End().Hour())

	assert.Len(t, repo.bookings, 1)
	assert.Len(t, reminders.scheduled, 1)
}

func TestBookRejectsOutsideHoursWithoutCalendarQuery(t *testing.T) {
	cal := &fakeCalendar{}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(19))
	require.NoError(t, err)

	assert.Equal(t, OutcomeOutsideHours, result.Outcome)
	assert.Zero(t, cal.busyCalls, "calendar must not be queried for out-of-hours requests")
	assert.Empty(t, cal.created)
}

func TestBookRejectsSpillOverClose(t *testing.T) {
	cal := &fakeCalendar{}
	engine, _, _ := testEngine(t, cal)

	// 17:30 + 60min runs past the 18:00 close.
	req := request(17)
	req.Start = req.Start.Add(30 * time.Minute)

	result, err := engine.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOutsideHours, result.Outcome)
	assert.Zero(t, cal.busyCalls)
}

func TestBookRejectsPastWithoutCalendarQuery(t *testing.T) {
	cal := &fakeCalendar{}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(7))
	require.NoError(t, err)

	assert.Equal(t, OutcomeInPast, result.Outcome)
	assert.Zero(t, cal.busyCalls)
}

func TestBookProposesAlternativesOnConflict(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: []models.TimeRange{
		{Start: day.Add(14 * time.Hour), End: day.Add(15 * time.Hour)},
	}}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)

	assert.Equal(t, OutcomeConflict, result.Outcome)
	require.NotEmpty(t, result.Alternatives)
	assert.Equal(t, day.Add(15*time.Hour), result.Alternatives[0].Start, "nearest forward slot offered first")
	assert.LessOrEqual(t, len(result.Alternatives), 3)
	assert.Empty(t, cal.created)
}

func TestBookFallsBackToEarlierSlotsSameDay(t *testing.T) {
	// Everything from 14:00 to close is busy; only the morning is free.
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: []models.TimeRange{
		{Start: day.Add(14 * time.Hour), End: day.Add(18 * time.Hour)},
	}}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)

	assert.Equal(t, OutcomeConflict, result.Outcome)
	require.NotEmpty(t, result.Alternatives, "an earlier same-day slot before close must be offered")
	assert.Equal(t, day.Add(9*time.Hour), result.Alternatives[0].Start)
}

func TestBookNoSlotsWhenDayFullyBooked(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: []models.TimeRange{
		{Start: day.Add(9 * time.Hour), End: day.Add(18 * time.Hour)},
	}}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSlots, result.Outcome)
}

func TestBookSurfacesCalendarFailureAsRetryable(t *testing.T) {
	cal := &fakeCalendar{failBusy: errors.New("calendar down")}
	engine, _, _ := testEngine(t, cal)

	_, err := engine.Book(context.Background(), request(14))
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestNextBookingReturnsUpcoming(t *testing.T) {
	cal := &fakeCalendar{}
	engine, _, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)

	next, err := engine.NextBooking(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, result.Booking.ID, next.ID)

	none, err := engine.NextBooking(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCancelDeletesEventAndMarksRecord(t *testing.T) {
	cal := &fakeCalendar{}
	engine, repo, _ := testEngine(t, cal)

	result, err := engine.Book(context.Background(), request(14))
	require.NoError(t, err)
	bookingID := result.Booking.ID

	require.NoError(t, engine.Cancel(context.Background(), bookingID))

	assert.Equal(t, []string{"evt-1"}, cal.deleted)
	stored, err := repo.GetByID(bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)

	// Cancelling twice is a no-op.
	require.NoError(t, engine.Cancel(context.Background(), bookingID))
	assert.Len(t, cal.deleted, 1)
}
