package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/config"
	"github.com/CrowSerainance/shift-coverage-bot/internal/database"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/service"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSigningSecret = "test-signing-secret"
	testChannelID     = "C_COVERAGE"
)

type postedMessage struct {
	ChannelID string
	Timestamp string
}

type ephemeralMessage struct {
	ChannelID string
	UserID    string
}

// fakeChat records chat API calls and hands out sequential message
// timestamps the way the real API would.
type fakeChat struct {
	posted     []postedMessage
	ephemerals []ephemeralMessage
	updated    []postedMessage
	seq        int
}

func (f *fakeChat) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.seq++
	ts := fmt.Sprintf("1700000000.%06d", f.seq)
	f.posted = append(f.posted, postedMessage{ChannelID: channelID, Timestamp: ts})
	return channelID, ts, nil
}

func (f *fakeChat) PostEphemeral(channelID, userID string, options ...slack.MsgOption) (string, error) {
	f.ephemerals = append(f.ephemerals, ephemeralMessage{ChannelID: channelID, UserID: userID})
	return "", nil
}

func (f *fakeChat) UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	f.updated = append(f.updated, postedMessage{ChannelID: channelID, Timestamp: timestamp})
	return channelID, timestamp, "", nil
}

func newTestHandler(t *testing.T) (*SlackHandler, *fakeChat, *service.Instance) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	services := service.NewInstance(database.NewInstance(db), service.FairnessConfig{
		MaxHours:   3.0,
		LockWindow: 60 * time.Minute,
	}, zap.NewNop())

	cfg := &config.Config{
		SlackSigningSecret: testSigningSecret,
		AllowedChannelID:   testChannelID,
		AdminUserIDs:       []string{"U_ADMIN"},
		MaxHours7d:         3.0,
		HeavyLockWindowMin: 60,
		DefaultTimezone:    "UTC",
	}

	chat := &fakeChat{}
	return New(chat, services, cfg, zap.NewNop()), chat, services
}

func signRequest(req *http.Request, body string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte("v0:" + ts + ":" + body))
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
}

func slashRequest(t *testing.T, userID, channelID, text string) *http.Request {
	t.Helper()

	form := url.Values{}
	form.Set("command", "/shift")
	form.Set("text", text)
	form.Set("user_id", userID)
	form.Set("channel_id", channelID)
	body := form.Encode()

	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signRequest(req, body)
	return req
}

func runSlash(t *testing.T, h *SlackHandler, userID, text string) *slack.Msg {
	t.Helper()

	rec := httptest.NewRecorder()
	h.HandleSlashCommand(rec, slashRequest(t, userID, testChannelID, text))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg slack.Msg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return &msg
}

func TestHandleSlashCommand_RejectsBadSignature(t *testing.T) {
	h, _, _ := newTestHandler(t)

	form := url.Values{}
	form.Set("command", "/shift")
	form.Set("text", "help")
	body := form.Encode()

	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	h.HandleSlashCommand(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSlashCommand_RejectsWrongChannel(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleSlashCommand(rec, slashRequest(t, "U_A", "C_SOMEWHERE_ELSE", "help"))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg slack.Msg
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Contains(t, msg.Text, "coverage channel")
}

func TestHandleSlashCommand_Help(t *testing.T) {
	h, _, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "help")
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Contains(t, msg.Text, "/shift drop")
	assert.Contains(t, msg.Text, "/shift schedule add")
}

func TestHandleSlashCommand_UnknownCommand(t *testing.T) {
	h, _, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "frobnicate")
	assert.Contains(t, msg.Text, "unknown command")
}

func TestHandleDrop_PostsMessageAndSavesShift(t *testing.T) {
	h, chat, services := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "drop evening coverage")
	assert.Equal(t, "Shift posted.", msg.Text)

	require.Len(t, chat.posted, 1)
	assert.Equal(t, testChannelID, chat.posted[0].ChannelID)

	shifts, err := services.Shift.ListEditable("U_A", false)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, chat.posted[0].Timestamp, shifts[0].MessageRef)
	assert.Equal(t, "evening coverage", shifts[0].Description)
}

func TestHandleDropSlot(t *testing.T) {
	h, chat, services := newTestHandler(t)

	status, err := services.Schedule.AddSlot("U_A", 0, 14, 30, "America/New_York")
	require.NoError(t, err)
	require.Equal(t, service.SlotAdded, status)

	msg := runSlash(t, h, "U_A", "drop-slot <@U_A|ana> monday 14:30 2")
	assert.Equal(t, "Scheduled shift posted.", msg.Text)
	require.Len(t, chat.posted, 1)

	shifts, err := services.Shift.ListEditable("U_A", false)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	require.NotNil(t, shifts[0].StartTime)
	assert.Equal(t, 2.0, shifts[0].DurationHours)
	assert.Equal(t, "U_A", shifts[0].AssignedUserID)
	assert.True(t, shifts[0].StartTime.After(time.Now().UTC()))
}

func TestHandleDropSlot_Errors(t *testing.T) {
	h, _, services := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "drop-slot <@U_A> monday 14:30")
	assert.Contains(t, msg.Text, "no schedule configured")

	status, err := services.Schedule.AddSlot("U_A", 0, 14, 30, "UTC")
	require.NoError(t, err)
	require.Equal(t, service.SlotAdded, status)

	msg = runSlash(t, h, "U_A", "drop-slot <@U_A> tuesday 14:30")
	assert.Contains(t, msg.Text, "has no")

	// Non-admins cannot drop someone else's slot.
	msg = runSlash(t, h, "U_B", "drop-slot <@U_A> monday 14:30")
	assert.Contains(t, msg.Text, "your own shifts")

	// Admins can.
	msg = runSlash(t, h, "U_ADMIN", "drop-slot <@U_A> monday 14:30")
	assert.Equal(t, "Scheduled shift posted.", msg.Text)
}

func TestHandleCancel(t *testing.T) {
	h, chat, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "cancel")
	assert.Equal(t, "No shifts to cancel.", msg.Text)

	msg = runSlash(t, h, "U_A", "cancel 1700000000.999999")
	assert.Equal(t, "Shift not found.", msg.Text)

	runSlash(t, h, "U_A", "drop morning coverage")
	require.Len(t, chat.posted, 1)
	ref := chat.posted[0].Timestamp

	msg = runSlash(t, h, "U_A", "cancel")
	assert.Contains(t, msg.Text, ref)

	msg = runSlash(t, h, "U_B", "cancel "+ref)
	assert.Contains(t, msg.Text, "your own shifts")

	msg = runSlash(t, h, "U_A", "cancel "+ref)
	assert.Equal(t, "Shift cancelled.", msg.Text)
	require.Len(t, chat.updated, 1)
	assert.Equal(t, ref, chat.updated[0].Timestamp)

	msg = runSlash(t, h, "U_A", "cancel "+ref)
	assert.Equal(t, "Already cancelled.", msg.Text)
}

func TestHandleEdit(t *testing.T) {
	h, chat, services := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "edit")
	assert.Equal(t, "No shifts to edit.", msg.Text)

	runSlash(t, h, "U_A", "drop first pass")
	ref := chat.posted[0].Timestamp

	msg = runSlash(t, h, "U_A", "edit "+ref)
	assert.Contains(t, msg.Text, "at least one field")

	msg = runSlash(t, h, "U_A", "edit "+ref+" duration=99")
	assert.Contains(t, msg.Text, "Duration must be between")

	msg = runSlash(t, h, "U_A", "edit "+ref+" date=2030-01-01")
	assert.Contains(t, msg.Text, "together")

	msg = runSlash(t, h, "U_A", "edit "+ref+" date=2020-01-01 time=10:00")
	assert.Contains(t, msg.Text, "past")

	msg = runSlash(t, h, "U_A", "edit "+ref+" second pass duration=2.5")
	assert.Contains(t, msg.Text, "Shift updated")
	require.Len(t, chat.updated, 1)

	shifts, err := services.Shift.ListEditable("U_A", false)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "second pass", shifts[0].Description)
	assert.Equal(t, 2.5, shifts[0].DurationHours)
}

func TestHandleStats(t *testing.T) {
	h, chat, services := newTestHandler(t)

	msg := runSlash(t, h, "U_B", "stats")
	assert.Contains(t, msg.Text, "<@U_B>")
	assert.Contains(t, msg.Text, "*0*")

	runSlash(t, h, "U_A", "drop coverage")
	out, err := services.Shift.Claim(context.Background(), chat.posted[0].Timestamp, "U_B", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, service.ClaimAccepted, out.Status)

	msg = runSlash(t, h, "U_A", "stats <@U_B|bea>")
	assert.Contains(t, msg.Text, "<@U_B>")
	assert.Contains(t, msg.Text, "*1*")
	assert.Contains(t, msg.Text, "1.0h")
}

func TestHandleSchedule(t *testing.T) {
	h, _, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "schedule")
	assert.Contains(t, msg.Text, "Usage")

	msg = runSlash(t, h, "U_A", "schedule add monday 14:30 America/New_York")
	assert.Contains(t, msg.Text, "Added to <@U_A>'s schedule")
	assert.Contains(t, msg.Text, "DST")

	msg = runSlash(t, h, "U_A", "schedule add monday 14:30 America/New_York")
	assert.Contains(t, msg.Text, "already exists")

	msg = runSlash(t, h, "U_A", "schedule add friday 25:00")
	assert.Contains(t, msg.Text, "out of range")

	msg = runSlash(t, h, "U_A", "schedule add friday 09:00 Mars/Olympus")
	assert.Contains(t, msg.Text, "Invalid timezone")

	msg = runSlash(t, h, "U_A", "schedule list")
	assert.Contains(t, msg.Text, "America/New_York")
	assert.Contains(t, msg.Text, "Monday 14:30")

	msg = runSlash(t, h, "U_A", "schedule remove monday 14:30")
	assert.Equal(t, "Schedule slot removed.", msg.Text)

	msg = runSlash(t, h, "U_A", "schedule remove monday 14:30")
	assert.Contains(t, msg.Text, "not found")

	msg = runSlash(t, h, "U_A", "schedule list")
	assert.Contains(t, msg.Text, "no schedule configured")
}

func TestHandleSchedule_AdminManagesOthers(t *testing.T) {
	h, _, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_B", "schedule add <@U_A> monday 14:30")
	assert.Contains(t, msg.Text, "your own schedule")

	msg = runSlash(t, h, "U_ADMIN", "schedule add <@U_A> monday 14:30")
	assert.Contains(t, msg.Text, "Added to <@U_A>'s schedule")

	msg = runSlash(t, h, "U_B", "schedule clear <@U_A>")
	assert.Contains(t, msg.Text, "your own schedule")

	msg = runSlash(t, h, "U_ADMIN", "schedule clear <@U_A>")
	assert.Contains(t, msg.Text, "Cleared *1* slot(s)")

	msg = runSlash(t, h, "U_ADMIN", "schedule clear <@U_A>")
	assert.Contains(t, msg.Text, "no schedule to clear")
}

func TestHandleSchedule_TimezoneHelp(t *testing.T) {
	h, _, _ := newTestHandler(t)

	msg := runSlash(t, h, "U_A", "schedule help")
	assert.Contains(t, msg.Text, "Common timezones")
	assert.Contains(t, msg.Text, "America/New_York")
	assert.Contains(t, msg.Text, "UTC")
}

func interactionRequest(t *testing.T, userID, ref string) *http.Request {
	t.Helper()

	payload := fmt.Sprintf(`{
		"type": "block_actions",
		"user": {"id": %q},
		"channel": {"id": %q},
		"message": {"ts": %q, "text": "*Shift Available*"},
		"actions": [{"action_id": "shift_claim_button", "block_id": "shift_actions", "value": %q}]
	}`, userID, testChannelID, ref, ref)

	form := url.Values{}
	form.Set("payload", payload)
	body := form.Encode()

	req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	signRequest(req, body)
	return req
}

func TestHandleInteraction_Claim(t *testing.T) {
	h, chat, services := newTestHandler(t)

	runSlash(t, h, "U_A", "drop night coverage")
	ref := chat.posted[0].Timestamp

	rec := httptest.NewRecorder()
	h.HandleInteraction(rec, interactionRequest(t, "U_B", ref))
	require.Equal(t, http.StatusOK, rec.Code)

	// The message gets its claimed-by footer and the claimer a confirmation.
	require.Len(t, chat.updated, 1)
	assert.Equal(t, ref, chat.updated[0].Timestamp)
	require.Len(t, chat.ephemerals, 1)
	assert.Equal(t, "U_B", chat.ephemerals[0].UserID)

	shift, err := services.Shift.ListCancellable("U_A", false)
	require.NoError(t, err)
	require.Len(t, shift, 1)
	assert.Equal(t, "U_B", shift[0].ClaimedBy)
}

func TestHandleInteraction_ClaimRejectionsDoNotUpdateMessage(t *testing.T) {
	h, chat, _ := newTestHandler(t)

	runSlash(t, h, "U_A", "drop night coverage")
	ref := chat.posted[0].Timestamp

	// Creator pressing the button gets a whisper, not a claim.
	rec := httptest.NewRecorder()
	h.HandleInteraction(rec, interactionRequest(t, "U_A", ref))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, chat.updated)
	require.Len(t, chat.ephemerals, 1)
	assert.Equal(t, "U_A", chat.ephemerals[0].UserID)

	// Unknown ref.
	rec = httptest.NewRecorder()
	h.HandleInteraction(rec, interactionRequest(t, "U_B", "1700000000.424242"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, chat.updated)
	require.Len(t, chat.ephemerals, 2)
}

func TestHandleInteraction_RejectsBadSignature(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := interactionRequest(t, "U_B", "1700000000.000001")
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	h.HandleInteraction(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
