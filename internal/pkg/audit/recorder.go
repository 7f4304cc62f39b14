package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/audit"
	"github.com/qcc-workforce/attendance-backend-go/internal/domain/device"
)

// Sink accepts fire-and-forget audit and violation writes. Dispatch must
// never block the primary check-in/out path and must never surface a
// failure to it; failures are logged and dropped.
type Sink interface {
	Log(entry audit.Entry)
	Violation(v device.Violation)
}

const (
	defaultBuffer = 256
	writeTimeout  = 5 * time.Second
)

type job struct {
	entry     *audit.Entry
	violation *device.Violation
}

// Recorder drains audit entries and security violations to their
// repositories on a single background goroutine through a bounded queue.
type Recorder struct {
	auditRepo     audit.Repository
	violationRepo device.ViolationRepository

	jobs chan job
	once sync.Once
	done chan struct{}
}

func NewRecorder(auditRepo audit.Repository, violationRepo device.ViolationRepository, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	r := &Recorder{
		auditRepo:     auditRepo,
		violationRepo: violationRepo,
		jobs:          make(chan job, buffer),
		done:          make(chan struct{}),
	}
	go r.drain()
	return r
}

// Log enqueues an audit entry. Drops with an error log when the queue is full.
func (r *Recorder) Log(entry audit.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.enqueue(job{entry: &entry}, "audit entry", entry.Action)
}

// Violation enqueues a security violation row.
func (r *Recorder) Violation(v device.Violation) {
	if v.ID == "" {
		v.ID = uuid.Must(uuid.NewV7()).String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.enqueue(job{violation: &v}, "security violation", string(v.Type))
}

func (r *Recorder) enqueue(j job, kind, detail string) {
	select {
	case r.jobs <- j:
	default:
		slog.Error("Audit queue full, dropping record", "kind", kind, "detail", detail)
	}
}

// Close stops accepting work and waits for queued writes to finish.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.jobs)
		<-r.done
	})
}

func (r *Recorder) drain() {
	defer close(r.done)
	for j := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		switch {
		case j.entry != nil:
			if err := r.auditRepo.Create(ctx, *j.entry); err != nil {
				slog.Error("Failed to write audit entry",
					"action", j.entry.Action,
					"record_id", j.entry.RecordID,
					"error", err)
			}
		case j.violation != nil:
			if _, err := r.violationRepo.Create(ctx, *j.violation); err != nil {
				slog.Error("Failed to write security violation",
					"violation_type", j.violation.Type,
					"device_id", j.violation.DeviceID,
					"error", err)
			}
		}
		cancel()
	}
}
