package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"bizdir/internal/config"
)

type ctxKey struct{}

var logger = slog.Default()

// Init builds the process logger from config and installs it as the slog default.
func Init(cfg config.LogConfig) error {
	var writers []io.Writer
	if cfg.Output == "stdout" || cfg.Output == "both" || cfg.Output == "" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	Use(New(io.MultiWriter(writers...), cfg.Level, cfg.Format))
	return nil
}

// New returns a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Use replaces the process logger. Tests use it to capture output.
func Use(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID stores the request id for loggers derived from ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

// FromContext returns the process logger tagged with the request id carried by ctx.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if rid, ok := ctx.Value(ctxKey{}).(string); ok && rid != "" {
			return logger.With("req_id", rid)
		}
	}
	return logger
}

func write(level slog.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	attrs := []any{"kind", kind, "action", action}
	if c != nil {
		attrs = append(attrs, "ip", c.IP(), "method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, "req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
	}
	if err != nil {
		attrs = append(attrs, "err", err.Error())
	}
	if len(fields) > 0 {
		attrs = append(attrs, "fields", fields)
	}
	logger.Log(context.Background(), level, action, attrs...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelInfo, "info", c, action, nil, fields)
}

// Audit records a state change made by an identified caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelInfo, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelWarn, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(slog.LevelError, "error", c, action, err, fields)
}
