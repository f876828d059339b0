package slack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CrowSerainance/shift-coverage-bot/internal/domain"
)

type CommandType string

const (
	CmdDrop     CommandType = "drop"
	CmdDropSlot CommandType = "drop-slot"
	CmdCancel   CommandType = "cancel"
	CmdEdit     CommandType = "edit"
	CmdStats    CommandType = "stats"
	CmdSchedule CommandType = "schedule"
	CmdHelp     CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw:  text,
		Args: parts[1:],
	}

	switch parts[0] {
	case "drop":
		cmd.Type = CmdDrop
	case "drop-slot", "dropslot":
		cmd.Type = CmdDropSlot
	case "cancel":
		cmd.Type = CmdCancel
	case "edit":
		cmd.Type = CmdEdit
	case "stats":
		cmd.Type = CmdStats
	case "schedule":
		cmd.Type = CmdSchedule
	case "help", "":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

// ParseMention extracts the user ID from a Slack mention like
// <@U123456|name> or <@U123456>. Returns empty when the token is not a
// mention.
func ParseMention(token string) string {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
		return ""
	}
	inner := token[2 : len(token)-1]
	if idx := strings.Index(inner, "|"); idx >= 0 {
		inner = inner[:idx]
	}
	return inner
}

// ParseWeekday maps a day name like "monday" or "Wed" to the 0=Monday
// weekday numbering.
func ParseWeekday(s string) (int, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := domain.WeekdayNumbers[name]; ok {
		return wd, nil
	}
	for full, wd := range domain.WeekdayNumbers {
		if len(name) >= 3 && strings.HasPrefix(full, name) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %s", s)
}

// ParseClock parses "HH:MM" (24-hour) into hour and minute.
func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, minute, nil
}

func GetHelpText() string {
	return "*Available commands:*\n\n" +
		"*Shifts:*\n" +
		"• `/shift drop [description]` - Post a generic shift with a claim button\n" +
		"• `/shift drop-slot @user <day> <HH:MM> [duration] [YYYY-MM-DD]` - Drop a scheduled shift\n" +
		"• `/shift cancel <ref>` - Cancel a shift you posted\n" +
		"• `/shift edit <ref> [description=...] [date=YYYY-MM-DD time=HH:MM] [duration=H]` - Edit an unclaimed shift\n" +
		"• `/shift stats [@user]` - Claimed shift count and hours\n\n" +
		"*Schedules:*\n" +
		"• `/shift schedule add <day> <HH:MM> [timezone]` - Add a recurring slot (DST-aware)\n" +
		"• `/shift schedule remove <day> <HH:MM>` - Remove a slot\n" +
		"• `/shift schedule list [@user]` - Show a schedule\n" +
		"• `/shift schedule clear [@user]` - Clear a schedule (others: admin only)\n" +
		"• `/shift schedule help` - Common timezones with current UTC offsets"
}
