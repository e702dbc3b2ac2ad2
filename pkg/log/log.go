package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	logging "gopkg.in/op/go-logging.v1"
)

const module = "wgdash"

var (
	mu        sync.Mutex
	logWriter io.Writer = os.Stderr
	level               = logging.INFO
	logger              = logging.MustGetLogger(module)
)

func init() {
	configure()
}

// SetLogWriter sets the log output destination
func SetLogWriter(w io.Writer) {
	if w == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logWriter = w
	configure()
}

// SetLevel changes the minimum level that is written. Accepted values are
// debug, info, warn (or warning) and error, case insensitive.
func SetLevel(name string) error {
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	level = parsed
	configure()
	return nil
}

// ParseLevel maps a configuration level name to a go-logging level.
func ParseLevel(name string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return logging.INFO, nil
	case "debug":
		return logging.DEBUG, nil
	case "warn", "warning":
		return logging.WARNING, nil
	case "error":
		return logging.ERROR, nil
	}
	return logging.INFO, fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", name)
}

// configure must be called with mu held (or from init).
func configure() {
	format := `%{message}`
	if level == logging.DEBUG {
		format = `%{time:15:04:05.000} %{level:.4s} %{message}`
	}
	backend := logging.NewBackendFormatter(
		logging.NewLogBackend(logWriter, "", 0),
		logging.MustStringFormatter(format),
	)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, module)
	logger.SetBackend(leveled)
}

// Log prints a message to the log output
func Log(a ...any) {
	logger.Info(strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}

// Logf prints a formatted message to the log output
func Logf(format string, a ...any) {
	logger.Infof(strings.TrimSuffix(format, "\n"), a...)
}

func Debugf(format string, a ...any) {
	logger.Debugf(strings.TrimSuffix(format, "\n"), a...)
}

func Warnf(format string, a ...any) {
	logger.Warningf(strings.TrimSuffix(format, "\n"), a...)
}

func Errorf(format string, a ...any) {
	logger.Errorf(strings.TrimSuffix(format, "\n"), a...)
}
