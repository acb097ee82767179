package modules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCallback = errors.New("malformed callback payload")

// Button payloads on the wire stay pipe-delimited ASCII, but they are
// decoded exactly once at the boundary into these typed values.

// AnswerCallback is a press on one of the answer buttons:
// challenge|<user_id>|<challenge_index>|<token>
type AnswerCallback struct {
	UserID int64
	Index  int
	Token  string
}

// AdminCallback is a press on the admin pass/kick row:
// admin|<pass|kick>|<user_id>
type AdminCallback struct {
	Pass   bool
	UserID int64
}

func (a AnswerCallback) encode() string {
	return fmt.Sprintf("challenge|%d|%d|%s", a.UserID, a.Index, a.Token)
}

func (a AdminCallback) encode() string {
	action := "kick"
	if a.Pass {
		action = "pass"
	}
	return fmt.Sprintf("admin|%s|%d", action, a.UserID)
}

func parseAnswerCallback(data string) (AnswerCallback, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != "challenge" {
		return AnswerCallback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return AnswerCallback{}, fmt.Errorf("%w: user id in %q", ErrBadCallback, data)
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return AnswerCallback{}, fmt.Errorf("%w: index in %q", ErrBadCallback, data)
	}
	if parts[3] == "" {
		return AnswerCallback{}, fmt.Errorf("%w: empty token in %q", ErrBadCallback, data)
	}
	return AnswerCallback{UserID: userID, Index: index, Token: parts[3]}, nil
}

func parseAdminCallback(data string) (AdminCallback, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 3 || parts[0] != "admin" {
		return AdminCallback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	if parts[1] != "pass" && parts[1] != "kick" {
		return AdminCallback{}, fmt.Errorf("%w: action in %q", ErrBadCallback, data)
	}
	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return AdminCallback{}, fmt.Errorf("%w: user id in %q", ErrBadCallback, data)
	}
	return AdminCallback{Pass: parts[1] == "pass", UserID: userID}, nil
}
