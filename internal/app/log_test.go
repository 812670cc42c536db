package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "created password-based encryptor",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tcreated password-based encryptor\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "loading properties",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tloading properties\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "encryptor config not found for property, using default value",
			attrs:   []slog.Attr{slog.String("key", "jasypt.encryptor.pool-size"), slog.Int("default", 1)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tencryptor config not found for property, using default value\tkey=jasypt.encryptor.pool-size\tdefault=1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &logHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestLogHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &logHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "resolver")}).(*logHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "resolved", 0)
	r.AddAttrs(slog.String("mode", "asymmetric"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=resolver") {
		t.Errorf("expected pre-set attr component=resolver, got: %q", got)
	}
	if !strings.Contains(got, "mode=asymmetric") {
		t.Errorf("expected record attr mode=asymmetric, got: %q", got)
	}
}

func TestLogHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &logHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*logHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestLogHandler_Enabled(t *testing.T) {
	t.Run("no level enables everything", func(t *testing.T) {
		h := &logHandler{}
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			if !h.Enabled(context.Background(), level) {
				t.Errorf("Enabled(%v) = false, want true", level)
			}
		}
	})

	t.Run("level filters lower records", func(t *testing.T) {
		h := &logHandler{level: slog.LevelWarn}
		tests := map[slog.Level]bool{
			slog.LevelDebug: false,
			slog.LevelInfo:  false,
			slog.LevelWarn:  true,
			slog.LevelError: true,
		}
		for level, want := range tests {
			if got := h.Enabled(context.Background(), level); got != want {
				t.Errorf("Enabled(%v) = %v, want %v", level, got, want)
			}
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("writes all levels to file and filters stderr", func(t *testing.T) {
		dir := t.TempDir()
		var stderr bytes.Buffer

		logger, f, err := newLogger(dir, "test-op", &stderr, slog.LevelWarn)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		if f == nil {
			t.Fatal("newLogger() returned nil file")
		}

		logger.Info("default used", "key", "jasypt.encryptor.algorithm")
		logger.Warn("provider ignored")
		f.Close()

		data, err := os.ReadFile(filepath.Join(dir, LogFile))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		file := string(data)
		if !strings.Contains(file, "\tINFO\ttest-op\tdefault used\tkey=jasypt.encryptor.algorithm") {
			t.Errorf("log file missing info record: %q", file)
		}
		if !strings.Contains(file, "\tWARN\ttest-op\tprovider ignored") {
			t.Errorf("log file missing warn record: %q", file)
		}

		if strings.Contains(stderr.String(), "default used") {
			t.Errorf("stderr contains info record: %q", stderr.String())
		}
		if !strings.Contains(stderr.String(), "provider ignored") {
			t.Errorf("stderr missing warn record: %q", stderr.String())
		}
	})

	t.Run("no log dir", func(t *testing.T) {
		var stderr bytes.Buffer

		logger, f, err := newLogger("", "test-op", &stderr, slog.LevelDebug)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		if f != nil {
			t.Error("newLogger() opened a file without a log dir")
		}

		logger.Debug("hello")
		if !strings.Contains(stderr.String(), "\tDEBUG\ttest-op\thello") {
			t.Errorf("stderr = %q, want debug record", stderr.String())
		}
	})
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := &slogAdapter{l: slog.New(&logHandler{w: &buf, opID: "op"})}

	a.Debug("d")
	a.Info("i", "k", "v")
	a.Warn("w")
	a.Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[1], "\tINFO\top\ti\tk=v") {
		t.Errorf("info line = %q", lines[1])
	}
}
