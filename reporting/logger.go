// Package reporting renders the progress of experiments for people
// and for other processes.
package reporting

import (
	"io"
	"log/slog"

	"github.com/zeu5/frozenlake-rl/types"
)

// NewLogger builds a slog logger writing to w. format is "text" or "json".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, &types.ConfigurationError{Field: "log_level", Value: level, Err: err}
	}
	opts := &slog.HandlerOptions{Level: l}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, types.NewConfigurationError("log_format", format)
}
