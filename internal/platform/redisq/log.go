package redisq

import (
	"fmt"
	"log/slog"
)

// slogAsynqLogger adapts asynq.Logger to slog.
type slogAsynqLogger struct {
	logger *slog.Logger
}

func (l *slogAsynqLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l *slogAsynqLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l *slogAsynqLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l *slogAsynqLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }

// Fatal logs at error level and does not exit; shutdown is left to cmd/worker.
func (l *slogAsynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...), "fatal", true)
}
