// pkg/logging/logging.go - leveled key/value logging for the launcher
//
// The launcher logs to the console and, in debug mode, to a plain text log
// file plus an optional JSON-lines mirror for external tooling. Outside of
// debug mode only warnings and errors are emitted.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/windowsadmins/tdlauncher/pkg/config"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	// Define log levels.
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is one structured record written to the JSON-lines mirror.
type LogEntry struct {
	Time       int64                  `json:"time"`
	Timestamp  string                 `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Component  string                 `json:"component"`
	PID        int64                  `json:"pid"`
	Hostname   string                 `json:"hostname"`
	SessionID  string                 `json:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level         LogLevel
	LogFile       string // plain text log, empty disables file output
	JSONFile      string // JSON-lines mirror, empty disables it
	Component     string
	SessionID     string
	EnableConsole bool
	Console       io.Writer // defaults to os.Stdout
}

// Logger encapsulates the logging state.
type Logger struct {
	mu       sync.RWMutex
	logger   *log.Logger
	logLevel LogLevel
	logFile  *os.File
	jsonFile *os.File
	config   LoggerConfig
	hostname string
	console  bool
}

// singleton instance and sync.Once for thread-safe initialization
var (
	instance *Logger
	once     sync.Once
)

// Init initializes the singleton Logger based on the provided configuration.
// It must be called before any logging functions are used.
func Init(cfg *config.Configuration) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLoggerWithConfig(configFromSettings(cfg))
	})
	return initErr
}

func configFromSettings(cfg *config.Configuration) LoggerConfig {
	logCfg := LoggerConfig{
		Level:         LevelWarn,
		Component:     "tdlauncher",
		SessionID:     generateSessionID(),
		EnableConsole: true,
	}
	if cfg.Debug {
		logCfg.Level = LevelDebug
		logCfg.LogFile = cfg.LogFile
		if cfg.LogFile != "" && cfg.StructuredLog {
			logCfg.JSONFile = filepath.Join(filepath.Dir(cfg.LogFile), "events.jsonl")
		}
	}
	return logCfg
}

// generateSessionID creates a unique session identifier
func generateSessionID() string {
	return "tdlauncher-" + uuid.NewString()
}

// newLoggerWithConfig creates a new Logger instance with explicit configuration.
func newLoggerWithConfig(cfg LoggerConfig) (*Logger, error) {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}

	l := &Logger{
		logLevel: cfg.Level,
		config:   cfg,
		hostname: hostname,
		console:  cfg.EnableConsole,
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.logFile = f
	}
	if cfg.JSONFile != "" {
		f, err := os.OpenFile(cfg.JSONFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON log file: %w", err)
		}
		l.jsonFile = f
	}

	l.logger = log.New(l.writer(), "", 0)
	return l, nil
}

// writer returns the destination for plain text lines. Caller holds mu or
// is constructing the logger.
func (l *Logger) writer() io.Writer {
	switch {
	case l.console && l.logFile != nil:
		return io.MultiWriter(l.config.Console, l.logFile)
	case l.logFile != nil:
		return l.logFile
	case l.console:
		return l.config.Console
	default:
		return io.Discard
	}
}

// SetConsoleEnabled toggles console output. The terminal UI turns it off
// while it owns the screen; file output is unaffected.
func SetConsoleEnabled(enabled bool) {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.console = enabled
	instance.logger.SetOutput(instance.writer())
}

// CurrentLogFile returns the path of the plain text log, if any.
func CurrentLogFile() string {
	if instance == nil {
		return ""
	}
	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.config.LogFile
}

// GetSessionID returns the current session ID
func GetSessionID() string {
	if instance == nil {
		return ""
	}
	return instance.config.SessionID
}

// CloseLogger closes all log files if they're open.
func CloseLogger() {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if instance.logFile != nil {
		if err := instance.logFile.Close(); err != nil {
			fmt.Printf("Failed to close log file: %v\n", err)
		}
		instance.logFile = nil
	}
	if instance.jsonFile != nil {
		if err := instance.jsonFile.Close(); err != nil {
			fmt.Printf("Failed to close JSON log file: %v\n", err)
		}
		instance.jsonFile = nil
	}
	instance.logger.SetOutput(instance.writer())
}

// logMessage is the core logging method that writes to all configured outputs
func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.logLevel {
		return
	}

	properties := make(map[string]interface{})
	for i := 0; i+1 < len(keyValues); i += 2 {
		properties[fmt.Sprintf("%v", keyValues[i])] = keyValues[i+1]
	}

	now := time.Now()
	l.writeMainLog(now, level, message, keyValues)

	if l.jsonFile != nil {
		entry := LogEntry{
			Time:       now.Unix(),
			Timestamp:  now.Format(time.RFC3339),
			Level:      level.String(),
			Message:    message,
			Component:  l.config.Component,
			PID:        int64(os.Getpid()),
			Hostname:   l.hostname,
			SessionID:  l.config.SessionID,
			Properties: properties,
		}
		if data, err := json.Marshal(entry); err == nil {
			l.jsonFile.Write(append(data, '\n'))
		}
	}

	if l.logFile != nil {
		l.logFile.Sync()
	}
}

// writeMainLog writes one line in the traditional "[ts] LEVEL msg k=v" format.
func (l *Logger) writeMainLog(now time.Time, level LogLevel, message string, keyValues []interface{}) {
	line := fmt.Sprintf("[%s] %-5s %s", now.Format("2006-01-02 15:04:05"), level.String(), message)
	for i := 0; i+1 < len(keyValues); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyValues[i], keyValues[i+1])
	}
	l.logger.Println(line)
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	if instance == nil {
		return
	}
	instance.logMessage(LevelError, message, keyValues...)
}

// New creates a console Logger used for user-facing CLI output.
func New(verbose bool) *Logger {
	enableColors()

	output := os.Stdout
	if !verbose {
		output = os.Stderr
	}
	return &Logger{
		logger:   log.New(output, "", 0),
		logLevel: LevelInfo,
		console:  true,
	}
}

// SetOutput changes the output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// colorPrintf prints a colored message.
func (l *Logger) colorPrintf(color, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	msg := fmt.Sprintf(format, v...)
	if runtime.GOOS == "windows" && !vtEnabled {
		l.logger.Print(msg)
		return
	}
	l.logger.Printf("%s%s%s", color, msg, colorReset)
}

// Printf prints a regular message.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Printf(format, v...)
}

// Success prints a success message in green.
func (l *Logger) Success(format string, v ...interface{}) {
	l.colorPrintf(colorGreen, format, v...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, v ...interface{}) {
	l.colorPrintf(colorRed, format, v...)
}

// Warning prints a warning message in yellow.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.colorPrintf(colorYellow, format, v...)
}

// Debug prints a debug message in blue.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.colorPrintf(colorBlue, format, v...)
}

// Fatal prints an error message in red and exits.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.Error(format, v...)
	CloseLogger()
	os.Exit(1)
}
