package jungfrau

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Pipeline corrects and embiggens frames on a pool of workers and hands them
// to the sink in frame order.
type Pipeline struct {
	Corrector    *Corrector
	Sink         FrameSink
	Workers      int
	MaxInFlight  int
	PreviewEvery int
	PreviewDir   string
	Encoding     OutputEncoding
	Written      int
}

func NewPipeline(corrector *Corrector, sink FrameSink, config Configuration) *Pipeline {
	workers := NumWorkers(config.NumWorkers)
	return &Pipeline{
		Corrector:    corrector,
		Sink:         sink,
		Workers:      workers,
		MaxInFlight:  MaxInFlight(config.MaxInFlight, workers),
		PreviewEvery: config.PreviewEvery,
		PreviewDir:   config.OutputDir,
		Encoding:     config.OutputEncoding,
	}
}

// ProcessStream reads frames from r, nFrames of them or up to the end of the
// stream when nFrames is negative, and writes them with indices starting at
// offset. It returns the number of frames written.
func (pl *Pipeline) ProcessStream(ctx context.Context, r *FrameReader, nFrames int, offset int) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan frameJob, pl.MaxInFlight)
	results := make(chan frameResult, pl.MaxInFlight)
	slots := make(chan struct{}, pl.MaxInFlight)

	var readErr error
	go func() {
		defer close(jobs)
		readErr = sendFramesToWorkers(ctx, r, nFrames, jobs, slots)
	}()

	var wg sync.WaitGroup
	for w := 1; w <= pl.Workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id, pl.Corrector, jobs, results)
		}(w)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	written, err := pl.processWorkerResults(results, slots, offset, cancel)
	if err != nil {
		return written, err
	}
	if readErr != nil {
		return written, readErr
	}
	if ctx.Err() != nil {
		return written, fmt.Errorf("processing %s stopped after %d frames: %w", r.Filename, written, context.Cause(ctx))
	}
	return written, nil
}

// sendFramesToWorkers takes a slot for every frame read, the slot is released
// once the frame has reached the sink.
func sendFramesToWorkers(ctx context.Context, r *FrameReader, nFrames int, jobs chan<- frameJob, slots chan struct{}) error {
	for i := 0; nFrames < 0 || i < nFrames; i++ {
		select {
		case <-ctx.Done():
			return nil
		case slots <- struct{}{}:
		}

		raw := rawPool.Get().([]uint16)
		err := r.ReadFrame(raw)
		if err != nil {
			rawPool.Put(raw)
			if errors.Is(err, io.EOF) {
				if nFrames < 0 {
					return nil
				}
				return &IOError{Op: "reading frames", Filename: r.Filename,
					Err: fmt.Errorf("%w: stream ended after %d of %d frames", ErrTruncatedStream, i, nFrames)}
			}
			return err
		}
		jobs <- frameJob{index: i, raw: raw}
	}
	return nil
}

func (pl *Pipeline) processWorkerResults(results <-chan frameResult, slots <-chan struct{}, offset int, cancel context.CancelFunc) (int, error) {
	pending := make(map[int]frameResult)
	next := 0
	written := 0
	var firstErr error
	start := time.Now()

	for result := range results {
		pending[result.index] = result
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if ready.err == nil && firstErr == nil {
				ready.err = pl.emit(offset+ready.index, ready.display)
				if ready.err == nil {
					written++
				}
			}
			if ready.display != nil {
				displayPool.Put(ready.display)
			}
			if ready.err != nil && firstErr == nil {
				firstErr = ready.err
				cancel()
			}
			<-slots
		}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Wrote %d frames in %d ms", written, time.Since(start).Milliseconds())
		logger.Info(message, "pipeline")
	}
	return written, firstErr
}

func (pl *Pipeline) emit(index int, display []uint32) error {
	if err := pl.Sink.WriteFrame(index, display); err != nil {
		return err
	}
	pl.Written++
	if pl.PreviewEvery > 0 && index%pl.PreviewEvery == 0 {
		if err := WritePreviewToFile(pl.PreviewDir, index, display, pl.Encoding); err != nil {
			return err
		}
	}
	return nil
}
