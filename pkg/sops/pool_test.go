// pkg/sops/pool_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test the bounded worker pool

package sops

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Input: fmt.Sprintf("in-%02d", i), Output: fmt.Sprintf("out-%02d", i)}
	}
	return jobs
}

func TestRunPoolBoundsConcurrency(t *testing.T) {
	var running, peak int32
	fn := func(ctx context.Context, job Job) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}

	var calls int
	err := runPool(context.Background(), 3, makeJobs(12), fn, func(done, total int, job Job, err error) {
		calls++
		assert.Equal(t, 12, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 12, calls)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRunPoolJoinsFailuresInOrder(t *testing.T) {
	fn := func(ctx context.Context, job Job) error {
		if job.Input == "in-01" || job.Input == "in-04" {
			return fmt.Errorf("failed %s", job.Input)
		}
		return nil
	}
	err := runPool(context.Background(), 4, makeJobs(6), fn, nil)
	require.Error(t, err)
	assert.Equal(t, "failed in-01\nfailed in-04", err.Error())
}

func TestRunPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran int32
	err := runPool(ctx, 2, makeJobs(3), func(ctx context.Context, job Job) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestRunPoolEmpty(t *testing.T) {
	assert.NoError(t, runPool(context.Background(), 4, nil, nil, nil))
}

type argsRunner struct {
	mu    sync.Mutex
	calls []string
}

func (r *argsRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return nil, nil
}

func TestRunPoolDrivesCrypto(t *testing.T) {
	runner := &argsRunner{}
	c := &Crypto{GPGKey: "KEY", Runner: runner}

	require.NoError(t, runPool(context.Background(), 2, makeJobs(2), fileJob(c.Encrypt), nil))
	require.NoError(t, runPool(context.Background(), 2, makeJobs(1), fileJob(c.Decrypt), nil))

	sort.Strings(runner.calls)
	assert.Equal(t, []string{
		"sops -d --pgp KEY --output out-00 in-00",
		"sops -e --pgp KEY --output out-00 in-00",
		"sops -e --pgp KEY --output out-01 in-01",
	}, runner.calls)
}
