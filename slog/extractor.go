package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/coinscrape"
)

// Ensure LoggingExtractor implements coinscrape.Extractor.
var _ coinscrape.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   coinscrape.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next coinscrape.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Parse delegates to the wrapped extractor. Queries against the returned
// document are logged as well.
func (e *LoggingExtractor) Parse(raw string) (coinscrape.Document, error) {
	begin := time.Now()
	doc, err := e.next.Parse(raw)
	e.logger.Debug("parse",
		"bytes", len(raw),
		"duration", time.Since(begin),
		"err", err,
	)
	if err != nil {
		return nil, err
	}
	return &loggingDocument{next: doc, logger: e.logger}, nil
}

// Extract delegates to the wrapped extractor and logs the anchor pattern,
// the number of paths and the error code on failure.
func (e *LoggingExtractor) Extract(req *coinscrape.ExtractionRequest, raw string) (results []string, err error) {
	defer logExtract(e.logger, req, time.Now(), &err)
	return e.next.Extract(req, raw)
}

type loggingDocument struct {
	next   coinscrape.Document
	logger *slog.Logger
}

func (d *loggingDocument) Extract(req *coinscrape.ExtractionRequest) (results []string, err error) {
	defer logExtract(d.logger, req, time.Now(), &err)
	return d.next.Extract(req)
}

func logExtract(logger *slog.Logger, req *coinscrape.ExtractionRequest, begin time.Time, errp *error) {
	attrs := []any{
		"pattern", req.Pattern.String(),
		"paths", len(req.Paths),
		"duration", time.Since(begin),
	}
	if err := *errp; err != nil {
		attrs = append(attrs, "code", coinscrape.ErrorCode(err), "err", err)
	}
	logger.Debug("extract", attrs...)
}
