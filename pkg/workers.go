package jungfrau

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

type frameJob struct {
	index int
	raw   []uint16
}

type frameResult struct {
	index   int
	display []uint32
	err     error
}

// Bytes held by one frame between reading and writing
const frameFootprint = 2*NPixels + 4*NPixels + 4*DisplayPixels

var rawPool = sync.Pool{New: func() any { return make([]uint16, NPixels) }}
var displayPool = sync.Pool{New: func() any { return make([]uint32, DisplayPixels) }}

func worker(id int, corrector *Corrector, jobs <-chan frameJob, results chan<- frameResult) {
	scratch := make([]uint32, NPixels)
	for job := range jobs {
		results <- processFrame(id, corrector, job, scratch)
	}
}

func processFrame(id int, corrector *Corrector, job frameJob, scratch []uint32) (result frameResult) {
	result.index = job.index
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("worker %d recovered from panic on frame %d: %v", id, job.index, r)
		}
	}()
	defer rawPool.Put(job.raw)

	if err := corrector.Correct(job.raw, scratch); err != nil {
		result.err = err
		return result
	}
	display := displayPool.Get().([]uint32)
	if err := Embiggen(scratch, display); err != nil {
		displayPool.Put(display)
		result.err = err
		return result
	}
	result.display = display
	return result
}

// NumWorkers resolves a configured worker count, 0 meaning one per logical core.
func NumWorkers(configured int) int {
	if configured > 0 {
		return configured
	}
	if cores := cpuid.CPU.LogicalCores; cores > 0 {
		return cores
	}
	return runtime.NumCPU()
}

// MaxInFlight bounds the frames between reader and sink so they fit in a
// quarter of the physical memory, and never below one per worker.
func MaxInFlight(configured int, workers int) int {
	limit := configured
	if total := memory.TotalMemory(); total > 0 {
		byMemory := int(total / 4 / frameFootprint)
		if limit <= 0 || byMemory < limit {
			limit = byMemory
		}
	}
	if limit < workers {
		limit = workers
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
