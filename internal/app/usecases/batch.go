package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

// Job is one project file to compile.
type Job struct {
	Name string
	Data []byte
}

// Outcome is the result of one job. Err is set when the file could not be
// imported or the context was cancelled before the job ran.
type Outcome struct {
	Name     string
	Document *project.Document
	Result   *codegen.Result
	Err      error
}

type batchParam struct {
	idx     int
	ctx     context.Context
	job     Job
	b       *BatchGenerator
	results []Outcome
	wg      *sync.WaitGroup
}

func (p *batchParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.job = Job{}
	p.b = nil
	p.results = nil
	p.wg = nil
}

var batchParamPool = &sync.Pool{
	New: func() any { return new(batchParam) },
}

// BatchGenerator compiles many project files on a bounded worker pool.
type BatchGenerator struct {
	gen  CodeGenerator
	opts codegen.Options
	pool *ants.PoolWithFunc
}

// NewBatchGenerator starts a pool of size workers compiling with opts.
func NewBatchGenerator(gen CodeGenerator, opts codegen.Options, size int) (*BatchGenerator, error) {
	if gen == nil {
		return nil, errors.New("code generator is nil")
	}
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	b := &BatchGenerator{gen: gen, opts: opts}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*batchParam)
		if !ok {
			panic("batch generator pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			batchParamPool.Put(param)
		}()
		param.results[param.idx] = param.b.run(param.ctx, param.job)
	})
	if err != nil {
		return nil, fmt.Errorf("create batch generator pool: %w", err)
	}
	b.pool = pool
	return b, nil
}

// Close releases the worker pool.
func (b *BatchGenerator) Close() {
	b.pool.Release()
}

// Run compiles every job and returns the outcomes in job order.
func (b *BatchGenerator) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	if len(jobs) == 0 {
		return nil, dto.ErrEmptyBatch
	}
	results := make([]Outcome, len(jobs))
	var wg sync.WaitGroup
	for idx, job := range jobs {
		param := batchParamPool.Get().(*batchParam)
		param.idx = idx
		param.ctx = ctx
		param.job = job
		param.b = b
		param.results = results
		param.wg = &wg
		wg.Add(1)
		if err := b.pool.Invoke(param); err != nil {
			wg.Done()
			results[idx] = Outcome{Name: job.Name, Err: fmt.Errorf("submit %s: %w", job.Name, err)}
			param.reset()
			batchParamPool.Put(param)
		}
	}
	wg.Wait()
	return results, nil
}

func (b *BatchGenerator) run(ctx context.Context, job Job) Outcome {
	out := Outcome{Name: job.Name}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	doc, err := project.Import(job.Data)
	if err != nil {
		out.Err = err
		return out
	}
	out.Document = doc
	out.Result = b.gen.Generate(doc.Graph(), b.opts)
	return out
}
