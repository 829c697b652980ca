package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

// ResolveDir picks the log directory: -logpath flag, then
// PARROT_LOG_PATH, then the OS default location.
func ResolveDir(flagPath string) (string, error) {
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	envPath := os.Getenv("PARROT_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	return defaultDir()
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "parrot"), nil
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "parrot", "logs"), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	pid = os.Getpid()

	var err error
	diagPath := filepath.Join(dir, "parrot_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

// SessionStart records the beginning of a recording attempt.
func SessionStart(provider string, words int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", provider).
		Int("words", words).
		Msg("session_start")
}

// SessionScored records the outcome of a successfully graded attempt.
func SessionScored(score, recognized, wpm int, hasWPM bool) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Int("score", score).
		Int("recognized_words", recognized)
	if hasWPM {
		ev = ev.Int("wpm", wpm)
	}
	ev.Msg("session_scored")
}

// SessionError records a failed attempt with its classified kind.
func SessionError(kind string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("kind", kind).
		Err(err).
		Msg("session_error")
}

// PersistenceError records a history write that failed after scoring.
// The scored result is still shown; only the stored copy is lost.
func PersistenceError(err error) {
	if !logReady {
		return
	}
	diagLog.Error().Err(err).Msg("history_write_failed")
}
