package productcache

import (
	"context"
	"log/slog"
)

// slogAdapter forwards slog records to a user supplied Logger.
type slogAdapter struct {
	attrs  []slog.Attr
	logger Logger
	group  string // current group prefix from WithGroup calls
}

// Enabled implements slog.Handler. Level filtering is left to the Logger.
func (a slogAdapter) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires passing Record by value
func (a slogAdapter) Handle(ctx context.Context, r slog.Record) error {
	args := make([]any, 0, (len(a.attrs)+r.NumAttrs())*2)

	for _, attr := range a.attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}

	r.Attrs(func(attr slog.Attr) bool {
		args = append(args, a.key(attr.Key), attr.Value.Any())
		return true
	})

	switch {
	case r.Level < slog.LevelInfo:
		a.logger.Debug(r.Message, args...)
	case r.Level < slog.LevelWarn:
		a.logger.Info(r.Message, args...)
	case r.Level < slog.LevelError:
		a.logger.Warn(r.Message, args...)
	default:
		a.logger.Error(r.Message, args...)
	}
	return nil
}

func (a slogAdapter) key(k string) string {
	if a.group == "" {
		return k
	}
	return a.group + "." + k
}

// WithAttrs implements slog.Handler. Attributes added here are qualified by
// the group active at the time of the call.
func (a slogAdapter) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(a.attrs), len(a.attrs)+len(attrs))
	copy(newAttrs, a.attrs)
	for _, attr := range attrs {
		newAttrs = append(newAttrs, slog.Attr{Key: a.key(attr.Key), Value: attr.Value})
	}
	return slogAdapter{
		logger: a.logger,
		attrs:  newAttrs,
		group:  a.group,
	}
}

// WithGroup implements slog.Handler.
func (a slogAdapter) WithGroup(name string) slog.Handler {
	return slogAdapter{
		logger: a.logger,
		attrs:  a.attrs,
		group:  a.key(name),
	}
}
