// Package extract resolves a DataRecord to bytes and writes them to a
// sink, either by a chunked direct copy (uncompressed entries) or by
// seeking each CompressionBlock in turn and decompressing through the
// selected codec. RunParallel adds a bounded worker-pool fan-out on top,
// each worker owning its own archive handle.
package extract

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/codec"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/vlog"
)

// File extracts dr's payload to w using src (positioned anywhere; it will
// seek as needed). trailer supplies the compression method table used to
// resolve a codec by name. ctx is checked between blocks; a cancelled
// context aborts with KindCancelled and the partial output is left in
// place.
func File(ctx context.Context, src *bytesource.Source, trailer *model.Trailer, registry *codec.Registry, dr model.DataRecord, w io.Writer, settings config.Settings) error {
	rec := dr.Record
	if rec.Encrypted {
		return pakerr.New(pakerr.KindEncryptionUnsupported, src.Path(), "file", fmt.Errorf("record is encrypted"))
	}

	if rec.CompressionMethodIndex == 0 {
		return copyRaw(ctx, src, dr.DataOffset, rec.CompressedSize, w, settings)
	}
	return copyBlocks(ctx, src, trailer, registry, rec, w, settings)
}

func copyRaw(ctx context.Context, src *bytesource.Source, offset, size int64, w io.Writer, settings config.Settings) error {
	if err := src.Seek(offset); err != nil {
		return err
	}
	remaining := size
	chunk := int64(settings.ChunkSize)
	if chunk <= 0 {
		chunk = 1 << 20
	}
	for remaining > 0 {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		n := chunk
		if remaining < n {
			n = remaining
		}
		buf, err := src.ReadN(int(n))
		if err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return pakerr.New(pakerr.KindIO, src.Path(), "file", err)
		}
		remaining -= n
	}
	return nil
}

func copyBlocks(ctx context.Context, src *bytesource.Source, trailer *model.Trailer, registry *codec.Registry, rec model.Record, w io.Writer, settings config.Settings) error {
	methodName := trailer.MethodName(rec.CompressionMethodIndex)
	decompressor, err := registry.Resolve(methodName)
	if err != nil {
		return pakerr.New(pakerr.KindCodecFailure, src.Path(), "file", err)
	}

	maxOut := int(rec.CompressionBlockUncompressedSize)
	if maxOut <= 0 {
		maxOut = int(rec.UncompressedSize)
	}

	var written int64
	for i, block := range rec.CompressionBlocks {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if block.EndOffset < block.StartOffset {
			return pakerr.At(pakerr.KindBlockMismatch, src.Path(), "file", block.StartOffset,
				fmt.Errorf("block %d has endOffset %d before startOffset %d", i, block.EndOffset, block.StartOffset))
		}
		span := int(block.EndOffset - block.StartOffset)
		if err := src.Seek(block.StartOffset); err != nil {
			return err
		}
		raw, err := src.ReadN(span)
		if err != nil {
			return err
		}
		out, err := decompressor.Decompress(raw, maxOut)
		if err != nil {
			return pakerr.At(pakerr.KindCodecFailure, src.Path(), "file", block.StartOffset, err)
		}
		if _, err := w.Write(out); err != nil {
			return pakerr.New(pakerr.KindIO, src.Path(), "file", err)
		}
		written += int64(len(out))
	}

	if written != rec.UncompressedSize {
		vlog.Logger().Warn("decompressed size mismatch", "path", src.Path(), "expected", rec.UncompressedSize, "got", written)
	}
	return nil
}

func checkCancel(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return pakerr.New(pakerr.KindCancelled, "", "file", ctx.Err())
	default:
		return nil
	}
}

// clampWorkers bounds a requested worker count to [1, runtime.NumCPU()]
// so a misconfigured Settings.ExtractWorkers can't oversubscribe the
// machine.
func clampWorkers(requested int) int {
	max := runtime.NumCPU()
	if max < 1 {
		max = 1
	}
	if requested <= 0 {
		return max
	}
	if requested > max {
		return max
	}
	return requested
}

// Job describes one file to extract in a parallel ExtractAll batch.
type Job struct {
	DataRecord model.DataRecord
	Writer     io.WriteCloser
	Path       string // archive-relative logical path, for error reporting
}

// Result is the outcome of one Job.
type Result struct {
	Path string
	Err  error
}

// RunParallel extracts jobs concurrently: a bounded worker pool drains a
// job channel, each worker owning an independent Byte Source clone, and
// collects results without requiring job order.
func RunParallel(ctx context.Context, src *bytesource.Source, trailer *model.Trailer, registry *codec.Registry, jobs []Job, settings config.Settings) []Result {
	workers := clampWorkers(settings.ExtractWorkers)
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan Job)
	resultCh := make(chan Result, len(jobs))

	for i := 0; i < workers; i++ {
		go func() {
			clone, err := src.Clone()
			if err != nil {
				for j := range jobCh {
					resultCh <- Result{Path: j.Path, Err: err}
					j.Writer.Close()
				}
				return
			}
			defer clone.Close()

			for j := range jobCh {
				err := File(ctx, clone, trailer, registry, j.DataRecord, j.Writer, settings)
				closeErr := j.Writer.Close()
				if err == nil {
					err = closeErr
				}
				resultCh <- Result{Path: j.Path, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			jobCh <- j
		}
	}()

	results := make([]Result, 0, len(jobs))
	for range jobs {
		results = append(results, <-resultCh)
	}
	return results
}
