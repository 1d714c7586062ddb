package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	common_models "go-admin/internal/common/models"
	"go-admin/internal/config"
	"go-admin/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level   zapcore.Level
	Message string
	Caller  string
	Module  string
	Ref     string
	Fields  map[string]string
}

// sink is the part of a mongo collection the writer needs.
type sink interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	coll    sink
	logChan chan LogEntry
	appId   string
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	return newDBLogWriter(mongodb.DB.Collection(cfg.LogsCollection), cfg.AppId, 1000)
}

func newDBLogWriter(coll sink, appId string, buffer int) *DBLogWriter {
	writer := &DBLogWriter{
		coll:    coll,
		logChan: make(chan LogEntry, buffer),
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks; entries are dropped when the buffer is full.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.logChan <- entry:
	default:
		fmt.Fprintln(os.Stderr, "DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the buffer to drain.
func (w *DBLogWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.logChan)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		logRecord := common_models.Log{
			AppId:        w.appId,
			Message:      entry.Message,
			LogLevelId:   mapLevelToInt(entry.Level),
			Caller:       entry.Caller,
			Module:       entry.Module,
			Ref:          entry.Ref,
			Fields:       entry.Fields,
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := w.coll.InsertOne(ctx, logRecord); err != nil {
			fmt.Fprintln(os.Stderr, "failed to persist log:", err)
		}
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
