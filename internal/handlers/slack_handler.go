package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CrowSerainance/shift-coverage-bot/internal/config"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/entity"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/service"
	slackcmd "github.com/CrowSerainance/shift-coverage-bot/internal/slack"
	"github.com/CrowSerainance/shift-coverage-bot/internal/timeslot"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// ChatClient is the subset of the Slack API the handlers use to post and
// update shift messages.
type ChatClient interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	PostEphemeral(channelID, userID string, options ...slack.MsgOption) (string, error)
	UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
}

type SlackHandler struct {
	client   ChatClient
	services *service.Instance
	cfg      *config.Config
	log      *zap.Logger
}

func New(client ChatClient, services *service.Instance, cfg *config.Config, log *zap.Logger) *SlackHandler {
	return &SlackHandler{
		client:   client,
		services: services,
		cfg:      cfg,
		log:      log,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifyRequest(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !h.cfg.ChannelAllowed(s.ChannelID) {
		h.respond(w, ephemeral("Shift commands can only be used in the coverage channel."))
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respond(w, ephemeral(fmt.Sprintf("%v\n\n%s", err, slackcmd.GetHelpText())))
		return
	}

	now := time.Now().UTC()

	var response *slack.Msg
	switch cmd.Type {
	case slackcmd.CmdDrop:
		response = h.handleDrop(cmd, &s, now)
	case slackcmd.CmdDropSlot:
		response = h.handleDropSlot(cmd, &s, now)
	case slackcmd.CmdCancel:
		response = h.handleCancel(r.Context(), cmd, &s)
	case slackcmd.CmdEdit:
		response = h.handleEdit(r.Context(), cmd, &s, now)
	case slackcmd.CmdStats:
		response = h.handleStats(cmd, &s)
	case slackcmd.CmdSchedule:
		response = h.handleSchedule(cmd, &s, now)
	case slackcmd.CmdHelp:
		response = ephemeral(slackcmd.GetHelpText())
	default:
		response = ephemeral("Unknown command. Try `/shift help`.")
	}

	h.respond(w, response)
}

// HandleInteraction dispatches block actions, i.e. presses of the one
// persistent claim button every dropped-shift message carries.
func (h *SlackHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifyRequest(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.PostFormValue("payload")), &cb); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if cb.Type != slack.InteractionTypeBlockActions {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, action := range cb.ActionCallback.BlockActions {
		if action.ActionID == domain.ClaimActionID {
			h.handleClaim(r.Context(), &cb, action.Value)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SlackHandler) handleClaim(ctx context.Context, cb *slack.InteractionCallback, messageRef string) {
	if messageRef == "" {
		messageRef = cb.Message.Timestamp
	}

	now := time.Now().UTC()
	outcome, err := h.services.Shift.Claim(ctx, messageRef, cb.User.ID, now)
	if err != nil {
		h.log.Error("claim failed", zap.String("message_ref", messageRef), zap.Error(err))
		h.whisper(cb.Channel.ID, cb.User.ID, "An error occurred. Please try again.")
		return
	}

	switch outcome.Status {
	case service.ClaimNotFound:
		h.whisper(cb.Channel.ID, cb.User.ID, "I couldn't find this shift in the database.")
	case service.ClaimCancelled:
		h.whisper(cb.Channel.ID, cb.User.ID, "This shift has been cancelled.")
	case service.ClaimOwnShift:
		h.whisper(cb.Channel.ID, cb.User.ID, "You can't claim a shift you dropped yourself.")
	case service.ClaimAlreadyClaimed:
		h.whisper(cb.Channel.ID, cb.User.ID, "This shift has already been claimed.")
	case service.ClaimOverCap:
		h.whisper(cb.Channel.ID, cb.User.ID, fmt.Sprintf(
			"You're at *%.1fh* in the last 7 days.\nYou can only claim this shift in the last *%d minutes* before it starts.",
			outcome.TotalHours, h.cfg.HeavyLockWindowMin))
	case service.ClaimAccepted:
		h.markMessageClaimed(cb, messageRef)
		h.whisper(cb.Channel.ID, cb.User.ID, "You claimed this shift!")
	}
}

func (h *SlackHandler) markMessageClaimed(cb *slack.InteractionCallback, messageRef string) {
	text := cb.Message.Text
	if text == "" {
		text = "Shift"
	}
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Claimed by <@%s>", cb.User.ID), false, false)),
	}
	if _, _, _, err := h.client.UpdateMessage(cb.Channel.ID, messageRef, slack.MsgOptionBlocks(blocks...)); err != nil {
		h.log.Warn("could not update claimed shift message",
			zap.String("message_ref", messageRef), zap.Error(err))
	}
}

func (h *SlackHandler) handleDrop(cmd *slackcmd.Command, s *slack.SlashCommand, now time.Time) *slack.Msg {
	description := strings.TrimSpace(strings.Join(cmd.Args, " "))
	if description == "" {
		description = "Upcoming shift"
	}

	text := fmt.Sprintf("*Shift Available*\n%s\nPosted by <@%s>", description, s.UserID)
	ref, err := h.postShiftMessage(s.ChannelID, text)
	if err != nil {
		h.log.Error("failed to post shift message", zap.Error(err))
		return ephemeral("Could not post the shift message.")
	}

	_, err = h.services.Shift.Create(service.CreateShiftInput{
		MessageRef:  ref,
		ChannelRef:  s.ChannelID,
		Description: description,
		CreatedBy:   s.UserID,
	}, now)
	if err != nil {
		h.log.Error("failed to save shift", zap.Error(err))
		return ephemeral("Could not save the shift.")
	}

	return ephemeral("Shift posted.")
}

func (h *SlackHandler) handleDropSlot(cmd *slackcmd.Command, s *slack.SlashCommand, now time.Time) *slack.Msg {
	if len(cmd.Args) < 3 {
		return ephemeral("Usage: `/shift drop-slot @user <day> <HH:MM> [duration] [YYYY-MM-DD]`")
	}

	targetID := slackcmd.ParseMention(cmd.Args[0])
	if targetID == "" {
		return ephemeral("Please mention the moderator whose slot is being dropped.")
	}
	if targetID != s.UserID && !h.cfg.IsAdmin(s.UserID) {
		return ephemeral("You can only drop your own shifts.")
	}

	weekday, err := slackcmd.ParseWeekday(cmd.Args[1])
	if err != nil {
		return ephemeral(err.Error())
	}
	hour, minute, err := slackcmd.ParseClock(cmd.Args[2])
	if err != nil {
		return ephemeral(err.Error())
	}

	durationHours := domain.DefaultDurationHours
	date := ""
	if len(cmd.Args) > 3 {
		if f, ferr := strconv.ParseFloat(cmd.Args[3], 64); ferr == nil {
			durationHours = f
			if len(cmd.Args) > 4 {
				date = cmd.Args[4]
			}
		} else {
			date = cmd.Args[3]
		}
	}
	if durationHours < domain.MinDurationHours || durationHours > domain.MaxDurationHours {
		return ephemeral(fmt.Sprintf("Duration must be between %v and %v hours.",
			domain.MinDurationHours, domain.MaxDurationHours))
	}

	slot, msg := h.findSlot(targetID, weekday, hour, minute)
	if slot == nil {
		return ephemeral(msg)
	}

	var start time.Time
	if date != "" {
		start, err = timeslot.ResolveExplicitDate(weekday, hour, minute, slot.Timezone, date, now)
		if err != nil {
			return ephemeral(err.Error())
		}
	} else {
		start = timeslot.NextOccurrence(weekday, hour, minute, slot.Timezone, now)
	}

	description := fmt.Sprintf("Dropped scheduled shift for <@%s>: *%s* at *%02d:%02d* (%s)",
		targetID, domain.WeekdayNames[weekday], hour, minute, slot.Timezone)
	text := fmt.Sprintf("*Moderator Shift Available*\n%s\nStarts <!date^%d^{date_short_pretty} {time}|%s> · %.1f hour(s)\nPosted by <@%s>",
		description, start.Unix(), start.Format(time.RFC1123), durationHours, s.UserID)

	ref, err := h.postShiftMessage(s.ChannelID, text)
	if err != nil {
		h.log.Error("failed to post shift message", zap.Error(err))
		return ephemeral("Could not post the shift message.")
	}

	_, err = h.services.Shift.Create(service.CreateShiftInput{
		MessageRef:     ref,
		ChannelRef:     s.ChannelID,
		Description:    description,
		CreatedBy:      s.UserID,
		StartTime:      &start,
		DurationHours:  durationHours,
		AssignedUserID: targetID,
	}, now)
	if err != nil {
		h.log.Error("failed to save shift", zap.Error(err))
		return ephemeral("Could not save the shift.")
	}

	return ephemeral("Scheduled shift posted.")
}

func (h *SlackHandler) findSlot(targetID string, weekday, hour, minute int) (*entity.ScheduleSlot, string) {
	slots, err := h.services.Schedule.ListSlots(targetID)
	if err != nil {
		h.log.Error("failed to list schedule", zap.Error(err))
		return nil, "Could not load the schedule."
	}
	if len(slots) == 0 {
		return nil, fmt.Sprintf("<@%s> has no schedule configured. Use `/shift schedule add` first.", targetID)
	}
	for _, slot := range slots {
		if slot.Weekday == weekday && slot.Hour == hour && slot.Minute == minute {
			return slot, ""
		}
	}
	return nil, fmt.Sprintf("<@%s> has no %s slot. Use `/shift schedule list` to see their slots.",
		targetID, timeslot.FormatSlot(weekday, hour, minute, ""))
}

func (h *SlackHandler) handleCancel(ctx context.Context, cmd *slackcmd.Command, s *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.listCancellable(s)
	}

	messageRef := strings.TrimSpace(cmd.Args[0])
	status, err := h.services.Shift.Cancel(ctx, messageRef, s.UserID, h.cfg.IsAdmin(s.UserID))
	if err != nil {
		h.log.Error("cancel failed", zap.String("message_ref", messageRef), zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}

	switch status {
	case service.CancelNotFound:
		return ephemeral("Shift not found.")
	case service.CancelNotOwner:
		return ephemeral("You can only cancel your own shifts.")
	case service.CancelAlreadyCancelled:
		return ephemeral("Already cancelled.")
	case service.CancelledWasClaimed:
		h.markMessageCancelled(s.ChannelID, messageRef, s.UserID)
		return ephemeral("Shift cancelled. *Note:* this shift was claimed - the claimer lost coverage.")
	default:
		h.markMessageCancelled(s.ChannelID, messageRef, s.UserID)
		return ephemeral("Shift cancelled.")
	}
}

func (h *SlackHandler) markMessageCancelled(channelID, messageRef, cancelledBy string) {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*Shift Cancelled*", false, false), nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Cancelled by <@%s>", cancelledBy), false, false)),
	}
	if _, _, _, err := h.client.UpdateMessage(channelID, messageRef, slack.MsgOptionBlocks(blocks...)); err != nil {
		h.log.Warn("could not update cancelled shift message",
			zap.String("message_ref", messageRef), zap.Error(err))
	}
}

func (h *SlackHandler) listCancellable(s *slack.SlashCommand) *slack.Msg {
	shifts, err := h.services.Shift.ListCancellable(s.UserID, h.cfg.IsAdmin(s.UserID))
	if err != nil {
		h.log.Error("failed to list cancellable shifts", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}
	if len(shifts) == 0 {
		return ephemeral("No shifts to cancel.")
	}

	lines := []string{"*Cancellable shifts* (use `/shift cancel <ref>`):"}
	for _, shift := range shifts {
		marker := ""
		if shift.Claimed() {
			marker = " [CLAIMED]"
		}
		lines = append(lines, fmt.Sprintf("• `%s`%s %s", shift.MessageRef, marker, shift.Description))
	}
	return ephemeral(strings.Join(lines, "\n"))
}

func (h *SlackHandler) handleEdit(ctx context.Context, cmd *slackcmd.Command, s *slack.SlashCommand, now time.Time) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.listEditable(s)
	}

	messageRef := strings.TrimSpace(cmd.Args[0])
	upd, errMsg := parseEditArgs(cmd.Args[1:], now)
	if errMsg != "" {
		return ephemeral(errMsg)
	}

	status, updated, err := h.services.Shift.Edit(ctx, messageRef, s.UserID, h.cfg.IsAdmin(s.UserID), upd)
	if err != nil {
		h.log.Error("edit failed", zap.String("message_ref", messageRef), zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}

	switch status {
	case service.EditNotFound:
		return ephemeral("Shift not found.")
	case service.EditNotOwner:
		return ephemeral("You can only edit your own shifts.")
	case service.EditAlreadyClaimed:
		return ephemeral("You cannot edit a shift that has already been claimed.")
	case service.EditCancelled:
		return ephemeral("You cannot edit a cancelled shift.")
	case service.EditNoChanges:
		return ephemeral("Please provide at least one field to update (description, date/time, or duration).")
	case service.EditInvalidDuration:
		return ephemeral(fmt.Sprintf("Duration must be between %v and %v hours.",
			domain.MinDurationHours, domain.MaxDurationHours))
	}

	var changes []string
	if upd.Description != nil {
		changes = append(changes, "description")
	}
	if upd.StartTime != nil {
		changes = append(changes, "start time")
	}
	if upd.DurationHours != nil {
		changes = append(changes, "duration")
	}

	h.refreshEditedMessage(s.ChannelID, messageRef, updated, s.UserID)
	return ephemeral(fmt.Sprintf("Shift updated. Changed: *%s*.", strings.Join(changes, ", ")))
}

func (h *SlackHandler) refreshEditedMessage(channelID, messageRef string, shift *entity.Shift, editedBy string) {
	text := fmt.Sprintf("*Shift Available*\n%s", shift.Description)
	if shift.StartTime != nil {
		text += fmt.Sprintf("\nStarts <!date^%d^{date_short_pretty} {time}|%s> · %.1f hour(s)",
			shift.StartTime.Unix(), shift.StartTime.Format(time.RFC1123), shift.DurationHours)
	}
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		claimActionBlock(messageRef),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Last edited by <@%s>", editedBy), false, false)),
	}
	if _, _, _, err := h.client.UpdateMessage(channelID, messageRef, slack.MsgOptionBlocks(blocks...)); err != nil {
		h.log.Warn("could not update edited shift message",
			zap.String("message_ref", messageRef), zap.Error(err))
	}
}

// parseEditArgs turns edit tokens into a partial update. date= and time=
// must come together; bare tokens accumulate into the description.
func parseEditArgs(args []string, now time.Time) (entity.ShiftUpdate, string) {
	var upd entity.ShiftUpdate
	var descParts []string
	var dateStr, timeStr string

	for _, tok := range args {
		switch {
		case strings.HasPrefix(tok, "date="):
			dateStr = strings.TrimPrefix(tok, "date=")
		case strings.HasPrefix(tok, "time="):
			timeStr = strings.TrimPrefix(tok, "time=")
		case strings.HasPrefix(tok, "duration="):
			f, err := strconv.ParseFloat(strings.TrimPrefix(tok, "duration="), 64)
			if err != nil {
				return upd, "Invalid duration. Use a number of hours, e.g. `duration=1.5`."
			}
			upd.DurationHours = &f
		case strings.HasPrefix(tok, "description="):
			descParts = append(descParts, strings.TrimPrefix(tok, "description="))
		default:
			descParts = append(descParts, tok)
		}
	}

	if desc := strings.TrimSpace(strings.Join(descParts, " ")); desc != "" {
		upd.Description = &desc
	}

	if dateStr != "" || timeStr != "" {
		if dateStr == "" || timeStr == "" {
			return upd, "Both date and time must be provided together to change the start time."
		}
		hour, minute, err := slackcmd.ParseClock(timeStr)
		if err != nil {
			return upd, err.Error()
		}
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return upd, "Invalid date format. Use *YYYY-MM-DD*."
		}
		start := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, minute, 0, 0, time.UTC)
		if !start.After(now) {
			return upd, "The date and time you provided is in the past."
		}
		upd.StartTime = &start
	}

	return upd, ""
}

func (h *SlackHandler) listEditable(s *slack.SlashCommand) *slack.Msg {
	shifts, err := h.services.Shift.ListEditable(s.UserID, h.cfg.IsAdmin(s.UserID))
	if err != nil {
		h.log.Error("failed to list editable shifts", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}
	if len(shifts) == 0 {
		return ephemeral("No shifts to edit.")
	}

	lines := []string{"*Editable shifts* (use `/shift edit <ref> ...`):"}
	for _, shift := range shifts {
		lines = append(lines, fmt.Sprintf("• `%s` %s (%.1fh)", shift.MessageRef, shift.Description, shift.DurationHours))
	}
	return ephemeral(strings.Join(lines, "\n"))
}

func (h *SlackHandler) handleStats(cmd *slackcmd.Command, s *slack.SlashCommand) *slack.Msg {
	targetID := s.UserID
	if len(cmd.Args) > 0 {
		if mention := slackcmd.ParseMention(cmd.Args[0]); mention != "" {
			targetID = mention
		}
	}

	count, hours, err := h.services.Shift.StatsFor(targetID)
	if err != nil {
		h.log.Error("failed to get stats", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}

	return ephemeral(fmt.Sprintf("*Shift stats for <@%s>*\n• Shifts claimed: *%d*\n• Total hours: *%.1fh*",
		targetID, count, hours))
}

func (h *SlackHandler) handleSchedule(cmd *slackcmd.Command, s *slack.SlashCommand, now time.Time) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `/shift schedule add|remove|list|clear|help`")
	}

	sub, args := cmd.Args[0], cmd.Args[1:]
	switch sub {
	case "add":
		return h.handleScheduleAdd(args, s, now)
	case "remove", "rm":
		return h.handleScheduleRemove(args, s)
	case "list", "ls":
		return h.handleScheduleList(args, s, now)
	case "clear":
		return h.handleScheduleClear(args, s)
	case "help":
		return scheduleHelp(now)
	default:
		return ephemeral("Usage: `/shift schedule add|remove|list|clear|help`")
	}
}

func (h *SlackHandler) handleScheduleAdd(args []string, s *slack.SlashCommand, now time.Time) *slack.Msg {
	targetID := s.UserID
	if len(args) > 0 {
		if mention := slackcmd.ParseMention(args[0]); mention != "" {
			if mention != s.UserID && !h.cfg.IsAdmin(s.UserID) {
				return ephemeral("You can only manage your own schedule.")
			}
			targetID = mention
			args = args[1:]
		}
	}
	if len(args) < 2 {
		return ephemeral("Usage: `/shift schedule add <day> <HH:MM> [timezone]`")
	}

	weekday, err := slackcmd.ParseWeekday(args[0])
	if err != nil {
		return ephemeral(err.Error())
	}
	hour, minute, err := slackcmd.ParseClock(args[1])
	if err != nil {
		return ephemeral(err.Error())
	}
	tzName := h.cfg.DefaultTimezone
	if len(args) > 2 {
		tzName = args[2]
	}

	status, err := h.services.Schedule.AddSlot(targetID, weekday, hour, minute, tzName)
	if err != nil {
		h.log.Error("failed to add schedule slot", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}

	switch status {
	case service.SlotAdded:
		return ephemeral(fmt.Sprintf("Added to <@%s>'s schedule: *%s*\nCurrent offset: %s (adjusts automatically for DST)",
			targetID, timeslot.FormatSlot(weekday, hour, minute, tzName), timeslot.UTCOffsetLabel(tzName, now)))
	case service.SlotAlreadyExists:
		return ephemeral("This slot already exists in the schedule.")
	case service.SlotInvalidTimezone:
		return ephemeral(fmt.Sprintf("Invalid timezone: `%s`\nUse a valid IANA timezone like `America/New_York` or `Europe/London`.", tzName))
	default:
		return ephemeral("Hour must be 0-23 and minute 0-59.")
	}
}

func (h *SlackHandler) handleScheduleRemove(args []string, s *slack.SlashCommand) *slack.Msg {
	if len(args) < 2 {
		return ephemeral("Usage: `/shift schedule remove <day> <HH:MM>`")
	}

	weekday, err := slackcmd.ParseWeekday(args[0])
	if err != nil {
		return ephemeral(err.Error())
	}
	hour, minute, err := slackcmd.ParseClock(args[1])
	if err != nil {
		return ephemeral(err.Error())
	}

	removed, err := h.services.Schedule.RemoveSlot(s.UserID, weekday, hour, minute)
	if err != nil {
		h.log.Error("failed to remove schedule slot", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}
	if !removed {
		return ephemeral("This slot was not found in your schedule.")
	}
	return ephemeral("Schedule slot removed.")
}

func (h *SlackHandler) handleScheduleList(args []string, s *slack.SlashCommand, now time.Time) *slack.Msg {
	targetID := s.UserID
	if len(args) > 0 {
		if mention := slackcmd.ParseMention(args[0]); mention != "" {
			targetID = mention
		}
	}

	slots, err := h.services.Schedule.ListSlots(targetID)
	if err != nil {
		h.log.Error("failed to list schedule", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}
	if len(slots) == 0 {
		return ephemeral(fmt.Sprintf("<@%s> has no schedule configured.\nUse `/shift schedule add` to add time slots.", targetID))
	}

	byTz := map[string][]string{}
	var tzOrder []string
	for _, slot := range slots {
		if _, seen := byTz[slot.Timezone]; !seen {
			tzOrder = append(tzOrder, slot.Timezone)
		}
		byTz[slot.Timezone] = append(byTz[slot.Timezone],
			fmt.Sprintf("%s %02d:%02d", domain.WeekdayNames[slot.Weekday], slot.Hour, slot.Minute))
	}

	lines := []string{fmt.Sprintf("*Schedule for <@%s>:*", targetID)}
	for _, tz := range tzOrder {
		lines = append(lines, fmt.Sprintf("*%s* (%s):", tz, timeslot.UTCOffsetLabel(tz, now)))
		for _, t := range byTz[tz] {
			lines = append(lines, "  • "+t)
		}
	}
	return ephemeral(strings.Join(lines, "\n"))
}

func (h *SlackHandler) handleScheduleClear(args []string, s *slack.SlashCommand) *slack.Msg {
	targetID := s.UserID
	if len(args) > 0 {
		if mention := slackcmd.ParseMention(args[0]); mention != "" {
			if mention != s.UserID && !h.cfg.IsAdmin(s.UserID) {
				return ephemeral("You can only clear your own schedule.")
			}
			targetID = mention
		}
	}

	removed, err := h.services.Schedule.ClearAll(targetID)
	if err != nil {
		h.log.Error("failed to clear schedule", zap.Error(err))
		return ephemeral("An error occurred. Please try again.")
	}
	if removed == 0 {
		return ephemeral(fmt.Sprintf("<@%s> had no schedule to clear.", targetID))
	}
	return ephemeral(fmt.Sprintf("Cleared *%d* slot(s) from <@%s>'s schedule.", removed, targetID))
}

func scheduleHelp(now time.Time) *slack.Msg {
	lines := []string{"*Common timezones* (current UTC offsets):"}
	for _, tz := range domain.CommonTimezones {
		lines = append(lines, fmt.Sprintf("• %s (%s)", tz, timeslot.UTCOffsetLabel(tz, now)))
	}
	return ephemeral(strings.Join(lines, "\n"))
}

func (h *SlackHandler) postShiftMessage(channelID, text string) (string, error) {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		claimActionBlock(""),
	}
	_, timestamp, err := h.client.PostMessage(channelID, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return "", err
	}
	return timestamp, nil
}

func claimActionBlock(messageRef string) *slack.ActionBlock {
	button := slack.NewButtonBlockElement(domain.ClaimActionID, messageRef,
		slack.NewTextBlockObject(slack.PlainTextType, domain.ClaimButtonLabel, false, false))
	button.Style = slack.StylePrimary
	return slack.NewActionBlock("shift_actions", button)
}

func (h *SlackHandler) whisper(channelID, userID, text string) {
	if _, err := h.client.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		h.log.Warn("could not send ephemeral message", zap.Error(err))
	}
}

func (h *SlackHandler) verifyRequest(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.cfg.SlackSigningSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}
	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}

	return body, true
}

func (h *SlackHandler) respond(w http.ResponseWriter, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.log.Warn("could not encode response", zap.Error(err))
	}
}

func ephemeral(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}
