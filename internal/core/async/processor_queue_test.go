package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

type recordingProcessor struct {
	mu    sync.Mutex
	seen  []pipeline.Request
	fail  map[string]bool
	block chan struct{}
}

func (p *recordingProcessor) ProcessFile(ctx context.Context, req pipeline.Request) (uuid.UUID, *pipeline.Result, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return uuid.Nil, nil, ctx.Err()
		}
	}
	p.mu.Lock()
	p.seen = append(p.seen, req)
	p.mu.Unlock()
	if p.fail[req.Path] {
		return uuid.Nil, nil, errors.New("boom")
	}
	return uuid.New(), pipeline.Assemble(nil, nil, constants.SelectDocType(req.DocType)), nil
}

func (p *recordingProcessor) paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.seen))
	for _, r := range p.seen {
		out = append(out, r.Path)
	}
	sort.Strings(out)
	return out
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueProcessesAllJobsBeforeShutdown(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]bool{"b.pdf": true}}
	q := NewProcessorQueue(proc, quiet(), WithWorkers(2), WithQueueSize(8))

	for _, path := range []string{"a.pdf", "b.pdf", "c.png"} {
		if err := q.Enqueue(context.Background(), Job{Path: path, DocType: "KTP"}); err != nil {
			t.Fatalf("enqueue %s: %v", path, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	got := proc.paths()
	want := []string{"a.pdf", "b.pdf", "c.png"}
	if len(got) != len(want) {
		t.Fatalf("processed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("processed %v, want %v", got, want)
		}
	}
	if proc.seen[0].DocType != "KTP" {
		t.Errorf("doc type not forwarded: %+v", proc.seen[0])
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{}, quiet(), WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), Job{Path: "late.pdf"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
}

func TestEnqueueFullQueueHonorsContext(t *testing.T) {
	block := make(chan struct{})
	proc := &recordingProcessor{block: block}
	q := NewProcessorQueue(proc, quiet(), WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(block)
		q.Shutdown(context.Background())
	}()

	// first job occupies the worker, second fills the buffer
	if err := q.Enqueue(context.Background(), Job{Path: "1.pdf"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(q.ch) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := q.Enqueue(context.Background(), Job{Path: "2.pdf"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{Path: "3.pdf"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
