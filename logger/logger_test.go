// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/prehook/testutil"
)

func TestLogfWriter(t *testing.T) {
	var (
		logged  bool
		message string
	)
	logf := func(format string, args ...any) {
		logged = true
		message = fmt.Sprintf(format, args...)
	}
	Logf(logf).Write([]byte("hello"))
	testutil.AssertEqual(t, logged, true)
	testutil.AssertEqual(t, message, "hello")
}

func TestAttachDetach(t *testing.T) {
	l := New(nil)
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: l.Level})

	l.Attach(h)
	ctx := Put(context.Background(), l)
	Info(ctx, "resolved source", slog.String("repo", "local"))
	if !strings.Contains(buf.String(), "repo=local") {
		t.Fatalf("attached handler did not receive record: %q", buf.String())
	}

	buf.Reset()
	l.Detach(h)
	Info(ctx, "after detach")
	testutil.AssertEqual(t, buf.String(), "")
}

func TestLevelVar(t *testing.T) {
	l := New(nil)
	var buf bytes.Buffer
	l.Attach(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: l.Level}))
	ctx := Put(context.Background(), l)

	Debug(ctx, "hidden")
	testutil.AssertEqual(t, buf.String(), "")

	LevelVar(ctx).Set(slog.LevelDebug)
	Debug(ctx, "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug record missing after lowering level: %q", buf.String())
	}
}

func TestGetDefault(t *testing.T) {
	l := Get(context.Background())
	testutil.AssertEqual(t, IsDefault(l), true)
}

func TestConsoleHandlerNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := New(nil)
	l.Attach(ConsoleHandler(&buf, l.Level, false))
	l.Warn("hook modified files", "id", "black")
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("output contains escape sequences: %q", out)
	}
	if !strings.Contains(out, "hook modified files") || !strings.Contains(out, "id=black") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prehook.log")
	h, closer := FileHandler(path, slog.LevelInfo)
	l := New(nil)
	l.Attach(h)
	l.Info("plan built", "steps", 3)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"plan built"`) || !strings.Contains(string(b), `"steps":3`) {
		t.Fatalf("unexpected log file contents: %q", b)
	}
}
