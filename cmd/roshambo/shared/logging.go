// Package shared holds process setup used by every roshambo command.
package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/fileutil"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger creates a logger at the named level. With a file path the
// output goes to a rotating log file, otherwise to stderr. The returned
// closer releases the file.
func SetupLogger(level, file string) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if file != "" {
		if err := fileutil.EnsureParentDir(file); err != nil {
			return nil, nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out, closer = rotating, rotating
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}
