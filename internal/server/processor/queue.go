package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"chess/internal/server/core"
	"chess/internal/server/transcript"
)

const resolveTimeout = 2 * time.Second

// ResolveTask carries one difficulty phrase to a worker
type ResolveTask struct {
	Ctx      context.Context
	Text     string
	Response chan<- ResolveResult
}

// ResolveResult is the outcome of a difficulty parse
type ResolveResult struct {
	Difficulty core.Difficulty
	Found      bool
}

// ResolveQueue bounds how many difficulty parses, and therefore calls into a
// possibly slow synonym resolver, run at once
type ResolveQueue struct {
	parser  *transcript.DifficultyParser
	tasks   chan ResolveTask
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

// NewResolveQueue creates a queue with specified worker count
func NewResolveQueue(parser *transcript.DifficultyParser, workerCount int) *ResolveQueue {
	if workerCount < 1 {
		workerCount = 2 // Default
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &ResolveQueue{
		parser:  parser,
		tasks:   make(chan ResolveTask, 100), // Buffered for queueing
		workers: workerCount,
		ctx:     ctx,
		cancel:  cancel,
	}

	q.start()
	return q
}

// start initializes the worker pool
func (q *ResolveQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// worker processes resolve tasks
func (q *ResolveQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return // Channel closed
			}

			d, found := q.parser.Parse(task.Ctx, task.Text)

			// Response channel is buffered, the waiter may already be gone
			task.Response <- ResolveResult{Difficulty: d, Found: found}

		case <-q.ctx.Done():
			return
		}
	}
}

// Submit adds a task to the queue
func (q *ResolveQueue) Submit(task ResolveTask) error {
	select {
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// Resolve parses a difficulty phrase on a worker and waits for the answer.
// A full queue or a timeout falls back to the built-in vocabulary.
func (q *ResolveQueue) Resolve(ctx context.Context, text string) (core.Difficulty, bool) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	respChan := make(chan ResolveResult, 1)
	if err := q.Submit(ResolveTask{Ctx: ctx, Text: text, Response: respChan}); err != nil {
		log.Printf("difficulty resolver: %v, using built-in words", err)
		return transcript.ParseDifficulty(ctx, text)
	}

	select {
	case result := <-respChan:
		return result.Difficulty, result.Found
	case <-ctx.Done():
		log.Printf("difficulty resolver: %v, using built-in words", ctx.Err())
		return transcript.ParseDifficulty(context.Background(), text)
	}
}

// Shutdown gracefully stops the queue
func (q *ResolveQueue) Shutdown(timeout time.Duration) error {
	q.once.Do(q.cancel)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
