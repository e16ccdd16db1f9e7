package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bookingRepo "chairtime/database/repository/booking"
	"chairtime/models"
	"chairtime/services/booking"
	"chairtime/services/response"
	"chairtime/services/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testResponses() *response.Generator {
	return response.NewGenerator("Tony's Cuts", "9:00 AM - 6:00 PM")
}

type captureMessenger struct {
	recipients []string
	texts      []string
	sendErr    error
}

func (m *captureMessenger) SendMessage(_ context.Context, recipientID, text string) error {
	m.recipients = append(m.recipients, recipientID)
	m.texts = append(m.texts, text)
	return m.sendErr
}

type scriptedRouter struct {
	reply    string
	err      error
	messages []string
}

func (r *scriptedRouter) HandleMessage(_ context.Context, _, text string) (string, error) {
	r.messages = append(r.messages, text)
	return r.reply, r.err
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, rec
}

func messagePayload(t *testing.T, senderID, text string, echo bool) []byte {
	t.Helper()
	event := models.WebhookEvent{
		Object: "instagram",
		Entry: []models.WebhookEntry{{
			ID:   "page-1",
			Time: time.Now().UnixMilli(),
			Messaging: []models.MessagingEvent{{
				Sender:    models.Principal{ID: senderID},
				Recipient: models.Principal{ID: "page-1"},
				Message:   &models.MessageEvent{MID: "mid-1", Text: text, IsEcho: echo},
			}},
		}},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

func TestVerifyHandshakeEchoesChallenge(t *testing.T) {
	h := NewWebhookHandler(&scriptedRouter{}, &captureMessenger{}, testResponses(), "shhh")
	c, rec := newTestContext(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=shhh&hub.challenge=12345", nil)

	h.VerifyWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestVerifyHandshakeRejectsBadToken(t *testing.T) {
	h := NewWebhookHandler(&scriptedRouter{}, &captureMessenger{}, testResponses(), "shhh")
	c, rec := newTestContext(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)

	h.VerifyWebhookHandler(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerifyHandshakeRejectsBadMode(t *testing.T) {
	h := NewWebhookHandler(&scriptedRouter{}, &captureMessenger{}, testResponses(), "shhh")
	c, rec := newTestContext(http.MethodGet,
		"/webhook?hub.mode=unsubscribe&hub.verify_token=shhh&hub.challenge=12345", nil)

	h.VerifyWebhookHandler(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReceiveSendsRouterReply(t *testing.T) {
	rt := &scriptedRouter{reply: "Hi! Want to book a visit?"}
	msg := &captureMessenger{}
	h := NewWebhookHandler(rt, msg, testResponses(), "shhh")

	c, rec := newTestContext(http.MethodPost, "/webhook", messagePayload(t, "user-1", "hello", false))
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello"}, rt.messages)
	assert.Equal(t, []string{"user-1"}, msg.recipients)
	assert.Equal(t, []string{"Hi! Want to book a visit?"}, msg.texts)
}

func TestReceiveSkipsEchoes(t *testing.T) {
	rt := &scriptedRouter{reply: "should not be sent"}
	msg := &captureMessenger{}
	h := NewWebhookHandler(rt, msg, testResponses(), "shhh")

	c, rec := newTestContext(http.MethodPost, "/webhook", messagePayload(t, "user-1", "hello", true))
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rt.messages)
	assert.Empty(t, msg.texts)
}

func TestReceiveSkipsEmptyText(t *testing.T) {
	rt := &scriptedRouter{reply: "should not be sent"}
	msg := &captureMessenger{}
	h := NewWebhookHandler(rt, msg, testResponses(), "shhh")

	c, rec := newTestContext(http.MethodPost, "/webhook", messagePayload(t, "user-1", "", false))
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rt.messages)
}

func TestReceiveIgnoresOtherObjects(t *testing.T) {
	rt := &scriptedRouter{}
	h := NewWebhookHandler(rt, &captureMessenger{}, testResponses(), "shhh")

	payload := []byte(`{"object":"page","entry":[]}`)
	c, rec := newTestContext(http.MethodPost, "/webhook", payload)
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rt.messages)
}

func TestReceiveRepliesWithApologyOnRouterError(t *testing.T) {
	rt := &scriptedRouter{err: errors.New("model down")}
	msg := &captureMessenger{}
	h := NewWebhookHandler(rt, msg, testResponses(), "shhh")

	c, rec := newTestContext(http.MethodPost, "/webhook", messagePayload(t, "user-1", "hello", false))
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code, "webhook must never bubble failures to Meta")
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "Sorry")
}

// --- end-to-end: webhook delivery through the real router and engine ---

type e2eCalendar struct {
	busyQueries []models.TimeRange
	created     []models.AppointmentRequest
}

func (f *e2eCalendar) BusyIntervals(_ context.Context, from, to time.Time) ([]models.TimeRange, error) {
	f.busyQueries = append(f.busyQueries, models.TimeRange{Start: from, End: to})
	return nil, nil
}

func (f *e2eCalendar) CreateEvent(_ context.Context, req models.AppointmentRequest) (string, error) {
	f.created = append(f.created, req)
	return "evt-e2e", nil
}

func (f *e2eCalendar) DeleteEvent(context.Context, string) error { return nil }

type e2eRepo struct {
	bookings []models.Booking
}

func (f *e2eRepo) Create(b *models.Booking) error {
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *e2eRepo) GetByID(string) (*models.Booking, error)         { return nil, errors.New("not found") }
func (f *e2eRepo) Update(*models.Booking) error                    { return nil }
func (f *e2eRepo) UpcomingByUser(string) ([]models.Booking, error) { return nil, nil }

var _ bookingRepo.BookingRepository = (*e2eRepo)(nil)

type e2eClassifier struct {
	extracted time.Time
}

func (f *e2eClassifier) Classify(context.Context, string, *models.Conversation) (models.Intent, error) {
	return models.IntentBookingInquiry, nil
}

func (f *e2eClassifier) ExtractDateTime(context.Context, string, time.Time) (*time.Time, error) {
	return &f.extracted, nil
}

func (f *e2eClassifier) Answer(context.Context, string, []models.Message) (string, error) {
	return "", errors.New("unused")
}

type e2eStore struct {
	conversations map[string]*models.Conversation
}

func (s *e2eStore) Get(_ context.Context, userID string) (*models.Conversation, error) {
	if conv, ok := s.conversations[userID]; ok {
		return conv, nil
	}
	return models.NewConversation(), nil
}

func (s *e2eStore) Set(_ context.Context, userID string, conv *models.Conversation) error {
	s.conversations[userID] = conv
	return nil
}

func (s *e2eStore) Clear(_ context.Context, userID string) error {
	delete(s.conversations, userID)
	return nil
}

type noopReminders struct{}

func (noopReminders) Schedule(context.Context, models.Booking) error { return nil }

// A "book me for Saturday at 2pm" message must end in a calendar query for
// that Saturday, a created 2-3 PM event, and a confirmation DM.
func TestBookingMessageEndToEnd(t *testing.T) {
	hours, err := booking.ParseBusinessHours("09:00", "18:00")
	require.NoError(t, err)

	cal := &e2eCalendar{}
	repo := &e2eRepo{}
	now := func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	saturday := time.Date(2026, 3, 7, 14, 0, 0, 0, time.UTC)

	engine := &booking.DefaultEngine{
		Calendar:       cal,
		Repo:           repo,
		Reminders:      noopReminders{},
		Hours:          hours,
		MaxSuggestions: 3,
		Location:       time.UTC,
		Now:            now,
	}
	rt := &router.DefaultRouter{
		Classifier:         &e2eClassifier{extracted: saturday},
		Engine:             engine,
		Responses:          response.NewGenerator("Tony's Cuts", "9:00 AM - 6:00 PM"),
		Store:              &e2eStore{conversations: make(map[string]*models.Conversation)},
		DefaultServiceType: "Haircut",
		DurationMinutes:    60,
		Location:           time.UTC,
		Now:                now,
	}

	msg := &captureMessenger{}
	h := NewWebhookHandler(rt, msg, testResponses(), "shhh")

	c, rec := newTestContext(http.MethodPost, "/webhook",
		messagePayload(t, "user-1", "Book me for Saturday at 2pm", false))
	h.ReceiveWebhookHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, cal.busyQueries, 1)
	assert.Equal(t, 7, cal.busyQueries[0].Start.Day(), "availability checked for the requested Saturday")

	require.Len(t, cal.created, 1)
	assert.True(t, cal.created[0].Start.Equal(saturday))
	assert.True(t, cal.created[0].End().Equal(saturday.Add(time.Hour)))

	require.Len(t, repo.bookings, 1)
	assert.Equal(t, models.BookingStatusConfirmed, repo.bookings[0].Status)

	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "Saturday, March 7 at 2:00 PM")
}
