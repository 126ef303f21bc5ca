package sops

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
)

// Job turns one input file into one output file
type Job struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// JobFunc performs a single job
type JobFunc func(ctx context.Context, job Job) error

// fileJob adapts an input/output operation to a JobFunc
func fileJob(op func(ctx context.Context, input, output string) error) JobFunc {
	return func(ctx context.Context, job Job) error {
		return op(ctx, job.Input, job.Output)
	}
}

// Progress is notified after every finished job. It is called from the
// collecting goroutine only.
type Progress func(done, total int, job Job, err error)

type jobResult struct {
	idx int
	job Job
	err error
}

// runPool executes jobs on a fixed number of workers. A failing job does not
// stop its siblings; all failures are returned joined in input order.
func runPool(ctx context.Context, workers int, jobs []Job, fn JobFunc, progress Progress) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	workCh := make(chan int, len(jobs))
	doneCh := make(chan jobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				job := jobs[idx]
				var err error
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				} else {
					err = fn(ctx, job)
				}
				doneCh <- jobResult{idx: idx, job: job, err: err}
			}
		}()
	}

	for idx := range jobs {
		workCh <- idx
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(doneCh)
	}()

	var failed []int
	errs := make(map[int]error)
	done := 0
	for res := range doneCh {
		done++
		if res.err != nil {
			failed = append(failed, res.idx)
			errs[res.idx] = res.err
		}
		if progress != nil {
			progress(done, len(jobs), res.job, res.err)
		}
	}

	sort.Ints(failed)
	joined := make([]error, 0, len(failed))
	for _, idx := range failed {
		joined = append(joined, errs[idx])
	}
	return stderrors.Join(joined...)
}
