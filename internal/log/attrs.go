// Package log holds slog attribute helpers shared by the engines so that
// diagnostics use the same keys everywhere
package log

import (
	"fmt"
	"log/slog"
)

func ComponentID[T ~string](id T) slog.Attr {
	return slog.String("component_id", string(id))
}

func MachineID[T ~string](id T) slog.Attr {
	return slog.String("machine_id", string(id))
}

func State[T ~string](state T) slog.Attr {
	return slog.String("state", string(state))
}

func Lexeme[T ~string](lexeme T) slog.Attr {
	return slog.String("lexeme", string(lexeme))
}

func Property(name string) slog.Attr {
	return slog.String("property", name)
}

func TaskState(state fmt.Stringer) slog.Attr {
	return slog.String("task_state", state.String())
}

func Recovered(r any) slog.Attr {
	return slog.String("panic", fmt.Sprint(r))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
