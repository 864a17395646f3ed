package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Command names understood by the bot.
const (
	CmdReport = "/report"
	CmdInd    = "/ind"
	CmdHelp   = "/help"
)

// Command is a parsed bot command. Start and End are zero when omitted.
type Command struct {
	Name   string
	Symbol string
	Start  time.Time
	End    time.Time
}

// ParseCommand parses "/report" and "/ind SYMBOL [start] [end]". Any other
// input yields CmdHelp.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Name: CmdHelp}, nil
	}
	// Group chats append the bot name: /report@scope_bot
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case CmdReport:
		return Command{Name: CmdReport}, nil
	case CmdInd:
		if len(fields) < 2 || len(fields) > 4 {
			return Command{}, errors.New("usage: /ind SYMBOL [start] [end]")
		}
		cmd := Command{Name: CmdInd, Symbol: strings.ToUpper(fields[1])}
		var err error
		if len(fields) >= 3 {
			if cmd.Start, err = time.Parse(time.DateOnly, fields[2]); err != nil {
				return Command{}, fmt.Errorf("start date %q: want YYYY-MM-DD", fields[2])
			}
		}
		if len(fields) == 4 {
			if cmd.End, err = time.Parse(time.DateOnly, fields[3]); err != nil {
				return Command{}, fmt.Errorf("end date %q: want YYYY-MM-DD", fields[3])
			}
		}
		return cmd, nil
	default:
		return Command{Name: CmdHelp}, nil
	}
}
