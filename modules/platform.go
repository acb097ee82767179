package modules

import (
	"strings"
	"time"

	tg "github.com/amarnathcjd/gogram/telegram"
)

// CallResult classifies best-effort platform calls so callers can tell
// "nothing to do" from "denied" without inspecting raw RPC errors.
type CallResult int

const (
	ResultOK CallResult = iota
	ResultPermissionDenied
	ResultNotFound
	ResultFailed
)

func (r CallResult) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultPermissionDenied:
		return "permission denied"
	case ResultNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// Button is one inline keyboard button with a callback payload.
type Button struct {
	Text string
	Data string
}

// ChatOps is the slice of the chat platform the gate needs. The live
// implementation is a thin gogram adapter; tests substitute a recorder.
type ChatOps interface {
	Restrict(chatID, userID int64, mute bool) CallResult
	Kick(chatID, userID int64, until time.Time) CallResult
	DeleteMessage(chatID int64, msgID int32) CallResult
	SendKeyboard(chatID int64, text string, rows [][]Button) (int32, error)
	EditMessage(chatID int64, msgID int32, text string) error
	Admins(chatID int64) ([]int64, error)
}

type gogramOps struct{}

func classify(err error) CallResult {
	if err == nil {
		return ResultOK
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ADMIN_REQUIRED"),
		strings.Contains(msg, "FORBIDDEN"),
		strings.Contains(msg, "RIGHT"),
		strings.Contains(msg, "USER_ADMIN_INVALID"):
		return ResultPermissionDenied
	case strings.Contains(msg, "NOT_PARTICIPANT"),
		strings.Contains(msg, "ID_INVALID"),
		strings.Contains(msg, "USER_NOT_FOUND"):
		return ResultNotFound
	default:
		return ResultFailed
	}
}

func (gogramOps) Restrict(chatID, userID int64, mute bool) CallResult {
	_, err := Client.EditBanned(chatID, userID, &tg.BannedOptions{Mute: mute})
	return classify(err)
}

func (gogramOps) Kick(chatID, userID int64, until time.Time) CallResult {
	// A temporary ban until the deadline: the user can rejoin afterwards.
	_, err := Client.EditBanned(chatID, userID, &tg.BannedOptions{Ban: true, TillDate: int32(until.Unix())})
	return classify(err)
}

func (gogramOps) DeleteMessage(chatID int64, msgID int32) CallResult {
	_, err := Client.DeleteMessages(chatID, []int32{msgID})
	return classify(err)
}

func (gogramOps) SendKeyboard(chatID int64, text string, rows [][]Button) (int32, error) {
	kb := tg.NewKeyboard()
	for _, row := range rows {
		btns := make([]tg.KeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tg.Button.Data(b.Text, b.Data))
		}
		kb.AddRow(btns...)
	}
	msg, err := Client.SendMessage(chatID, text, &tg.SendOptions{ReplyMarkup: kb.Build()})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (gogramOps) EditMessage(chatID int64, msgID int32, text string) error {
	_, err := Client.EditMessage(chatID, msgID, text)
	return err
}

func (gogramOps) Admins(chatID int64) ([]int64, error) {
	parts, _, err := Client.GetChatMembers(chatID, &tg.ParticipantOptions{
		Filter: &tg.ChannelParticipantsAdmins{},
		Limit:  200,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		if p.User != nil {
			ids = append(ids, p.User.ID)
		}
	}
	return ids, nil
}
