package checker

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	"uptime-reporter/internal/domain"
)

// recorder collects cumulative checkpoint times for one probe. Trace hooks
// may run on dialer goroutines, hence the lock.
type recorder struct {
	mu    sync.Mutex
	start time.Time
	marks map[string]float64
}

func newRecorder(start time.Time) *recorder {
	return &recorder{
		start: start,
		marks: make(map[string]float64, len(domain.CheckpointOrder)),
	}
}

func (r *recorder) mark(name string) {
	elapsed := time.Since(r.start).Seconds()
	r.mu.Lock()
	r.marks[name] = elapsed
	r.mu.Unlock()
}

// checkpoints returns every checkpoint in order, zero for the ones never reached.
func (r *recorder) checkpoints() []domain.Checkpoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	cps := make([]domain.Checkpoint, len(domain.CheckpointOrder))
	for i, name := range domain.CheckpointOrder {
		cps[i] = domain.Checkpoint{Name: name, Reported: r.marks[name]}
	}
	return cps
}

func (r *recorder) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSDone: func(httptrace.DNSDoneInfo) {
			r.mark(domain.CheckpointNameLookup)
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil {
				r.mark(domain.CheckpointConnect)
			}
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				r.mark(domain.CheckpointAppConnect)
			}
		},
		GotConn: func(httptrace.GotConnInfo) {
			r.mark(domain.CheckpointPreTransfer)
		},
		GotFirstResponseByte: func() {
			r.mark(domain.CheckpointStartTransfer)
		},
	}
}

type recorderKey struct{}

func withRecorder(ctx context.Context, r *recorder) context.Context {
	ctx = context.WithValue(ctx, recorderKey{}, r)
	return httptrace.WithClientTrace(ctx, r.clientTrace())
}

func recorderFrom(ctx context.Context) *recorder {
	r, _ := ctx.Value(recorderKey{}).(*recorder)
	return r
}
