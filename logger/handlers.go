// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConsoleHandler returns a human-friendly [slog.Handler] that writes to w.
// Colors are used only when color is true.
func ConsoleHandler(w io.Writer, level slog.Leveler, color bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	})
}

// FileHandler returns a JSON [slog.Handler] that appends to the file at path,
// rotating it once it grows past 10 megabytes. The returned closer must be
// closed when the handler is no longer used.
func FileHandler(path string, level slog.Leveler) (slog.Handler, io.Closer) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		Compress:   true,
	}
	return slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: level}), lj
}
