package async

import (
	"context"
	"time"
)

// Job is one document waiting for extraction.
type Job struct {
	Path         string
	DocType      string
	DocumentName string
	SubmittedAt  time.Time
	TraceID      string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
