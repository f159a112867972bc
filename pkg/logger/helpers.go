package logger

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LogRequest logs an HTTP request outcome at a level matching its status
func LogRequest(log Logger, method, url string, statusCode int, durationMs float64) {
	if log == nil {
		log = GetLogger()
	}

	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	if statusCode >= 500 {
		log.ErrorWithFields("HTTP request server error", fields)
	} else if statusCode >= 400 {
		log.WarnWithFields("HTTP request client error", fields)
	} else {
		log.DebugWithFields("HTTP request completed", fields)
	}
}

// LogStrategy logs the outcome of one acquisition strategy for a company
func LogStrategy(log Logger, company, strategy string, repsFound int, err error) {
	if log == nil {
		log = GetLogger()
	}

	scoped := log.WithFields(map[string]interface{}{
		"company":    company,
		"strategy":   strategy,
		"reps_found": repsFound,
	})

	if err != nil {
		scoped.WithError(err).Warn("Strategy failed")
	} else {
		scoped.Info("Strategy completed")
	}
}

// LogScrapeProgress logs per-company scraping progress
func LogScrapeProgress(log Logger, company string, done, total int) {
	if log == nil {
		log = GetLogger()
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(done) / float64(total) * 100
	}

	log.InfoWithFields("Scraping progress", map[string]interface{}{
		"company":    company,
		"done":       done,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
