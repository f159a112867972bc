package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"repscout/pkg/logger"
	"repscout/pkg/models"
)

// Job is one company to scrape. Index carries the input position so the
// caller can reassemble results in order.
type Job struct {
	Index   int
	Company models.CompanyConfig
	Options models.ScrapeOptions
}

// JobResult pairs a finished company result with its input position.
type JobResult struct {
	Index  int
	Result *models.ScraperResult
}

// Pool runs company scrapes on a fixed set of workers. Each worker pulls
// from the job queue until it closes; results arrive on the result queue
// in completion order.
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan JobResult
	wg          sync.WaitGroup
	scraper     *Scraper
	logger      logger.Logger
}

// NewPool creates a worker pool over the given scraper.
func NewPool(numWorkers int, s *Scraper, log logger.Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan JobResult, numWorkers),
		scraper:     s,
		logger:      log,
	}
}

// Start launches the workers. ctx cancellation makes workers stop picking
// up new jobs; an in-flight scrape sees the same cancellation through its
// own context.
func (p *Pool) Start(ctx context.Context) {
	p.logger.InfoWithFields("starting scrape pool", map[string]interface{}{
		"workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the job queue, waits for workers to drain it and closes the
// result queue. Call only after every expected result has been consumed or
// submission has stopped.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.logger.Debug("scrape pool stopped")
}

// Submit queues one company for scraping.
func (p *Pool) Submit(job Job) {
	p.jobQueue <- job
}

// Results returns the channel finished results arrive on.
func (p *Pool) Results() <-chan JobResult {
	return p.resultQueue
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-ctx.Done():
			// Report cancelled jobs so the consumer's result count still
			// balances.
			p.resultQueue <- JobResult{Index: job.Index, Result: cancelledResult(job, ctx.Err())}
			continue
		default:
		}

		start := time.Now()
		p.logger.DebugWithFields("worker picked up company", map[string]interface{}{
			"worker_id": id,
			"company":   job.Company.Slug,
		})

		res := p.scraper.ScrapeCompany(ctx, job.Company, job.Options)

		p.logger.DebugWithFields("worker finished company", map[string]interface{}{
			"worker_id": id,
			"company":   job.Company.Slug,
			"reps":      res.RepsFound,
			"duration":  time.Since(start).String(),
		})

		p.resultQueue <- JobResult{Index: job.Index, Result: res}
	}
}

func cancelledResult(job Job, err error) *models.ScraperResult {
	res := &models.ScraperResult{Company: job.Company.Name}
	res.AddError(fmt.Errorf("scrape cancelled: %w", err))
	return res
}
