package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeRename Type = "rename"
	TypeDelete Type = "delete"
	TypeDone   Type = "done"
	TypeRemind Type = "remind"
	TypePing   Type = "ping"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type RenameArgs struct {
	Title string
}

type RemindArgs struct {
	When string
}

type PingArgs struct {
	Message string
}

// Command is a parsed palette entry. Commands other than add and ping act on
// the selected habit.
type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Rename *RenameArgs
	Remind *RemindArgs
	Ping   *PingArgs
}

var aliases = map[string]Type{
	"new":    TypeAdd,
	"mv":     TypeRename,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"toggle": TypeDone,
	"alarm":  TypeRemind,
	"test":   TypePing,
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		title, err := joinRequired(args, "add requires a title")
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeAdd, Raw: input, Add: &AddArgs{Title: title}}, nil
	case TypeRename:
		title, err := joinRequired(args, "rename requires a title")
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRename, Raw: input, Rename: &RenameArgs{Title: title}}, nil
	case TypeDelete, TypeDone:
		return Command{Type: typ, Raw: input}, nil
	case TypeRemind:
		when, err := joinRequired(args, "remind requires a time (HH:MM, YYYY-MM-DD HH:MM, RFC3339 or +duration)")
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRemind, Raw: input, Remind: &RemindArgs{When: when}}, nil
	case TypePing:
		return Command{Type: TypePing, Raw: input, Ping: &PingArgs{Message: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func joinRequired(args []string, msg string) (string, error) {
	value := strings.TrimSpace(strings.Join(args, " "))
	if value == "" {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: msg}
	}
	return value, nil
}
