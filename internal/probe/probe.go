// Package probe checks saved WebSocket endpoints for reachability by
// performing a handshake and closing immediately. It never touches the
// connection manager's state.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"wsup/internal/storage/models"
	wserrors "wsup/pkg/errors"
)

// Result holds the outcome for a single endpoint.
type Result struct {
	Connection *models.Connection
	Reachable  bool
	Latency    time.Duration
	Err        error
}

// BatchResult holds the outcome of probing multiple endpoints.
type BatchResult struct {
	Results   []*Result
	Probed    int
	Reachable int
	Failed    int
	Duration  time.Duration
}

// ProgressFunc is called each time a single probe completes during a batch.
type ProgressFunc func(result *Result, current, total int)

// Config holds configuration for the Prober.
type Config struct {
	Workers int64
	Timeout time.Duration
}

// Prober orchestrates endpoint reachability checks.
type Prober struct {
	config Config
}

// New creates a new Prober.
func New(cfg Config) *Prober {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Prober{config: cfg}
}

// Single probes one endpoint.
func (p *Prober) Single(ctx context.Context, c *models.Connection) *Result {
	result := &Result{Connection: c}

	probeCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	dialer := &websocket.Dialer{HandshakeTimeout: p.config.Timeout}

	start := time.Now()
	ws, _, err := dialer.DialContext(probeCtx, c.URL, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || probeCtx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w after %s", wserrors.ErrProbeTimeout, p.config.Timeout)
		}
		result.Err = err
		return result
	}
	result.Reachable = true
	result.Latency = time.Since(start)

	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	ws.Close()
	return result
}

// Batch probes multiple endpoints concurrently using a semaphore-based worker
// pool, reporting progress as each probe completes.
func (p *Prober) Batch(ctx context.Context, conns []*models.Connection, progress ProgressFunc) *BatchResult {
	startTime := time.Now()

	batch := &BatchResult{}
	results := make([]*Result, len(conns))
	var mu sync.Mutex
	var completed int

	sem := semaphore.NewWeighted(p.config.Workers)
	var wg sync.WaitGroup

	for i, c := range conns {
		wg.Add(1)
		go func(idx int, c *models.Connection) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			result := p.Single(ctx, c)
			results[idx] = result

			mu.Lock()
			completed++
			current := completed
			if result.Reachable {
				batch.Reachable++
			} else {
				batch.Failed++
			}
			mu.Unlock()

			if progress != nil {
				progress(result, current, len(conns))
			}
		}(i, c)
	}

	wg.Wait()

	for _, r := range results {
		if r != nil {
			batch.Results = append(batch.Results, r)
			batch.Probed++
		}
	}

	// Sort: reachable by latency ascending, failures at the end.
	sort.Slice(batch.Results, func(i, j int) bool {
		ri, rj := batch.Results[i], batch.Results[j]
		if ri.Reachable && !rj.Reachable {
			return true
		}
		if !ri.Reachable && rj.Reachable {
			return false
		}
		if ri.Reachable && rj.Reachable {
			return ri.Latency < rj.Latency
		}
		return false
	})

	batch.Duration = time.Since(startTime)
	return batch
}
