// Package zaplogger wraps zap with a console core and an optional database sink.
package zaplogger

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var log *zap.Logger
var atomicLevel zap.AtomicLevel
var encoderConfig zapcore.EncoderConfig

// Fields type, used to pass structured fields to the log functions.
type Fields map[string]interface{}

// AppLogTableName is the name of the table for application logs
var AppLogTableName = "_app_logs"

// LogModel is a single log entry persisted by the database sink
type LogModel struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index"`
	Level     string    `gorm:"index"`
	Caller    string
	Message   string
	Fields    datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for the LogModel
func (LogModel) TableName() string {
	return AppLogTableName
}

// dbWriter implements zapcore.WriteSyncer and stores entries via GORM
type dbWriter struct {
	db *gorm.DB
}

type logLine struct {
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
	Caller    string `json:"caller"`
	Message   string `json:"message"`
}

func (w *dbWriter) Write(p []byte) (int, error) {
	var line logLine
	if err := json.Unmarshal(p, &line); err != nil {
		return 0, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(p, &raw); err != nil {
		return 0, err
	}
	for _, k := range []string{"level", "timestamp", "caller", "message"} {
		delete(raw, k)
	}
	fieldsJSON, err := json.Marshal(raw)
	if err != nil {
		return 0, err
	}

	ts, err := time.Parse(timeLayout, line.Timestamp)
	if err != nil {
		ts = time.Now()
	}

	record := LogModel{
		Timestamp: ts,
		Level:     line.Level,
		Caller:    line.Caller,
		Message:   line.Message,
		Fields:    datatypes.JSON(fieldsJSON),
	}
	if result := w.db.Create(&record); result.Error != nil {
		return 0, result.Error
	}
	return len(p), nil
}

func (w *dbWriter) Sync() error {
	return nil
}

const timeLayout = "2006-01-02T15:04:05.999-0700"

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(timeLayout))
}

func init() {
	atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	encoderConfig = zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "timestamp",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   customTimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), atomicLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// InitLogger tees log output into the database in addition to the console
func InitLogger(db *gorm.DB) error {
	if err := db.AutoMigrate(&LogModel{}); err != nil {
		return err
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), atomicLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&dbWriter{db: db}), atomicLevel),
	)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) {
	switch level {
	case "debug":
		atomicLevel.SetLevel(zapcore.DebugLevel)
	case "info":
		atomicLevel.SetLevel(zapcore.InfoLevel)
	case "warn":
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	default:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Info logs an info message
func Info(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Info(msg, getZapFields(fields[0])...)
	} else {
		log.Info(msg)
	}
}

// Debug logs a debug message
func Debug(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Debug(msg, getZapFields(fields[0])...)
	} else {
		log.Debug(msg)
	}
}

// Warn logs a warning message
func Warn(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Warn(msg, getZapFields(fields[0])...)
	} else {
		log.Warn(msg)
	}
}

// Error logs an error message
func Error(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Error(msg, getZapFields(fields[0])...)
	} else {
		log.Error(msg)
	}
}

// Fatal logs a fatal message and exits the program
func Fatal(msg string, fields ...Fields) {
	if len(fields) > 0 {
		log.Fatal(msg, getZapFields(fields[0])...)
	} else {
		log.Fatal(msg)
	}
}

func getZapFields(fields Fields) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}

// Sync flushes any buffered log entries
func Sync() error {
	return log.Sync()
}
