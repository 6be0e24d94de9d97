package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dealerseo/seodash/internal/pkg/cache"
)

const (
	keyPrefix        = "seodash:jobs:"
	JobKeyPrefix     = keyPrefix + "job:"
	JobQueueKey      = keyPrefix + "pending"
	JobProcessingKey = keyPrefix + "processing"

	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour

	defaultWorkers = 3
	popTimeout     = time.Second
	stuckAfter     = 10 * time.Minute
	sweepInterval  = time.Minute
)

var errBadJobData = errors.New("unreadable job data")

// Queue runs registered handlers for jobs kept in Redis. A worker moves the
// job id from the pending list to the processing list while the handler
// runs, so ids left behind by a crashed process are found by the sweeper.
type Queue struct {
	client       *redis.Client
	workers      int
	retryBackoff time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	handlersMu sync.RWMutex
	handlers   map[JobType]Handler
}

// NewQueue creates a queue on the shared cache client.
func NewQueue(workers int) *Queue {
	return NewQueueWithClient(cache.GetClient(), workers)
}

func NewQueueWithClient(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Queue{
		client:       client,
		workers:      workers,
		retryBackoff: time.Minute,
		handlers:     make(map[JobType]Handler),
	}
}

// RegisterHandler binds a job type to the function that executes it.
func (q *Queue) RegisterHandler(jobType JobType, h Handler) {
	q.handlersMu.Lock()
	defer q.handlersMu.Unlock()
	q.handlers[jobType] = h
}

func (q *Queue) handler(jobType JobType) (Handler, bool) {
	q.handlersMu.RLock()
	defer q.handlersMu.RUnlock()
	h, ok := q.handlers[jobType]
	return h, ok
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})
	log.Infof("[JobQueue] starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i, q.stopCh)
	}
	q.wg.Add(1)
	go q.sweep(q.stopCh)
}

// Stop waits for running handlers to return.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] stopped")
}

func (q *Queue) work(id int, stop <-chan struct{}) {
	defer q.wg.Done()
	ctx := context.Background()
	for {
		select {
		case <-stop:
			return
		default:
		}

		job, err := q.claim(ctx)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] worker %d: %v", id, err)
			select {
			case <-stop:
				return
			case <-time.After(time.Second):
			}
			continue
		}
		q.processJob(ctx, job)
	}
}

// claim blocks up to popTimeout for the next pending job.
func (q *Queue) claim(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, popTimeout).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.load(ctx, id)
	if err != nil {
		q.release(ctx, id)
		return nil, fmt.Errorf("claim job %s: %w", id, err)
	}
	return job, nil
}

// EnqueueJob stores the job and appends it to the pending list.
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}

	ctx := context.Background()
	_, err = q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
		p.LPush(ctx, JobQueueKey, job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s job: %w", jobType, err)
	}
	log.Debugf("[JobQueue] enqueued %s job %s", job.Type, job.ID)
	return job, nil
}

// processJob runs the handler and settles the job: completed jobs are
// deleted, failed ones are pushed back after a linear backoff until
// MaxRetries is spent.
func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.save(ctx, job)

	err := q.run(ctx, job)
	if err == nil {
		job.MarkAsCompleted()
		q.forget(ctx, job.ID)
		return
	}

	job.MarkAsFailed(err.Error())
	if !job.IsRetryable() {
		log.Errorf("[JobQueue] %s job %s failed permanently after %d attempts: %v", job.Type, job.ID, job.RetryCount, err)
		q.save(ctx, job)
		q.release(ctx, job.ID)
		return
	}

	job.MarkAsRetrying()
	q.save(ctx, job)
	q.release(ctx, job.ID)
	delay := q.retryBackoff * time.Duration(job.RetryCount)
	log.Warnf("[JobQueue] %s job %s failed (attempt %d/%d), retrying in %s: %v",
		job.Type, job.ID, job.RetryCount, job.MaxRetries, delay, err)
	id := job.ID
	time.AfterFunc(delay, func() {
		if err := q.client.LPush(context.Background(), JobQueueKey, id).Err(); err != nil {
			log.Errorf("[JobQueue] failed to requeue job %s: %v", id, err)
		}
	})
}

func (q *Queue) run(ctx context.Context, job *Job) (err error) {
	h, ok := q.handler(job.Type)
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}

func (q *Queue) sweep(stop <-chan struct{}) {
	defer q.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if _, err := q.requeueStuck(context.Background(), now); err != nil {
				log.Errorf("[JobQueue] sweep failed: %v", err)
			}
		}
	}
}

// requeueStuck moves jobs that have been processing longer than stuckAfter
// back to the pending list and drops processing entries whose job data is
// gone or no longer processing.
func (q *Queue) requeueStuck(ctx context.Context, now time.Time) (int, error) {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, id := range ids {
		job, err := q.load(ctx, id)
		if err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, errBadJobData) {
			log.Warnf("[JobQueue] sweep could not read job %s: %v", id, err)
			continue
		}
		if err != nil || job.Status != JobStatusProcessing {
			q.release(ctx, id)
			continue
		}
		if now.Sub(startedAt(job)) <= stuckAfter {
			continue
		}

		log.Warnf("[JobQueue] requeueing stuck %s job %s", job.Type, job.ID)
		job.Status = JobStatusPending
		job.ErrorMsg = "requeued after processing stalled"
		job.UpdatedAt = now
		q.save(ctx, job)
		_, err = q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LRem(ctx, JobProcessingKey, 1, id)
			p.RPush(ctx, JobQueueKey, id)
			return nil
		})
		if err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

func startedAt(job *Job) time.Time {
	switch {
	case job.ProcessedAt != nil && !job.ProcessedAt.IsZero():
		return *job.ProcessedAt
	case !job.UpdatedAt.IsZero():
		return job.UpdatedAt
	default:
		return job.CreatedAt
	}
}

// GetJob returns the stored job. Completed jobs are deleted and yield
// redis.Nil.
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return q.load(ctx, jobID)
}

func (q *Queue) load(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadJobData, err)
	}
	return &job, nil
}

func (q *Queue) save(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] save job %s: %v", job.ID, err)
	}
}

func (q *Queue) release(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] release job %s: %v", id, err)
	}
}

func (q *Queue) forget(ctx context.Context, id string) {
	_, err := q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, JobKeyPrefix+id)
		p.LRem(ctx, JobProcessingKey, 1, id)
		return nil
	})
	if err != nil {
		log.Errorf("[JobQueue] forget job %s: %v", id, err)
	}
}
