package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFile = "log/app.log"
	logFileEnv     = "MOCKENV_LOG_FILE"
	logLevelEnv    = "LOG_LEVEL"
)

// CustomFormatter adds process and goroutine fields to JSON log lines. Caller
// fields come from logrus ReportCaller.
type CustomFormatter struct {
	logrus.JSONFormatter
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["pid"] = os.Getpid()
	entry.Data["goroutine_id"] = getGoroutineID()

	return f.JSONFormatter.Format(entry)
}

func newFormatter() *CustomFormatter {
	return &CustomFormatter{
		JSONFormatter: logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
				return filepath.Base(frame.Function), fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
			},
		},
	}
}

var (
	Log  *logrus.Logger
	once sync.Once
)

func initLogger(logFilePath string) {
	Log = logrus.New()

	Log.SetFormatter(newFormatter())

	var out io.Writer = os.Stdout
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			panic(fmt.Sprintf("failed to create log directory: %v", err))
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	Log.SetOutput(out)

	level, err := logrus.ParseLevel(os.Getenv(logLevelEnv))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetReportCaller(true)
}

// GetLogger returns the process-wide logger. MOCKENV_LOG_FILE selects the rotated
// log file; set it to "-" to log to stdout only.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		path := os.Getenv(logFileEnv)
		switch path {
		case "":
			path = defaultLogFile
		case "-":
			path = ""
		}
		initLogger(path)
	})
	return Log
}

func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	fmt.Sscanf(string(b), "goroutine %d", &id)
	return id
}
