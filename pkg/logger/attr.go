package logger

import "log/slog"

// Error returns an empty Attr for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Plan records a subscription plan identifier.
func Plan(id string) slog.Attr {
	return slog.String("plan", id)
}

// Status records a subscription status.
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// Code records a machine-readable error code.
func Code(code string) slog.Attr {
	return slog.String("code", code)
}

func Duration(name string, v any) slog.Attr {
	return slog.Any(name, v)
}
