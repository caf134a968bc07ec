package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/logging"
	"github.com/agbru/pdfbasics/internal/pdfa"
)

const tracerName = "github.com/agbru/pdfbasics/internal/merge"

// Recorder receives one observation per completed merge attempt.
type Recorder interface {
	ObserveMerge(sources int, size int64, duration time.Duration, err error)
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(m *Merger) { m.logger = l }
}

// WithClock sets the time source used for the document dates and durations.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) { m.now = now }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Merger) { m.progress = fn }
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Merger) { m.recorder = r }
}

// WithMetadata sets the metadata triple stamped on every output.
func WithMetadata(meta pdfa.Metadata) Option {
	return func(m *Merger) { m.meta = meta }
}

// Merger merges ordered PDF sources into a single document through an Engine.
// A Merger holds no per-merge state and may be reused; concurrent merges are
// safe as long as the Engine, logger, progress callback and recorder are.
type Merger struct {
	engine   Engine
	logger   logging.Logger
	now      func() time.Time
	progress ProgressFunc
	recorder Recorder
	meta     pdfa.Metadata
	tracer   trace.Tracer
}

// NewMerger returns a Merger delegating PDF work to engine.
func NewMerger(engine Engine, opts ...Option) *Merger {
	m := &Merger{
		engine: engine,
		logger: logging.NewNopLogger(),
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Metadata returns the triple stamped on outputs.
func (m *Merger) Metadata() pdfa.Metadata { return m.meta }

// MergeContents merges sources in order and returns the compound document.
// Every source is closed before MergeContents returns, on success and on
// failure. Any failure is returned as a *apperrors.MergeError.
func (m *Merger) MergeContents(ctx context.Context, sources []io.ReadCloser) (*bytes.Reader, error) {
	return m.merge(ctx, sources, nil)
}

// MergeContentsToFile merges sources and writes the result to outputFile,
// which must not exist yet. On failure no file is left at outputFile.
func (m *Merger) MergeContentsToFile(ctx context.Context, sources []io.ReadCloser, outputFile string) error {
	return m.mergeToFile(ctx, sources, nil, outputFile)
}

// MergeFiles opens paths in order and merges them into outputFile.
// If any path cannot be opened, the files opened so far are closed and
// nothing is written.
func (m *Merger) MergeFiles(ctx context.Context, paths []string, outputFile string) error {
	sources := make([]io.ReadCloser, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll(sources, m.logger)
			err = &apperrors.MergeError{Stage: apperrors.StageOpen, Path: p, Cause: err}
			m.observe(len(paths), 0, 0, err)
			return err
		}
		sources = append(sources, f)
	}
	return m.mergeToFile(ctx, sources, paths, outputFile)
}

func (m *Merger) mergeToFile(ctx context.Context, sources []io.ReadCloser, paths []string, outputFile string) error {
	out, err := m.merge(ctx, sources, paths)
	if err != nil {
		return err
	}
	m.emit(Event{Stage: StageWriting, Total: len(sources)})
	if err := WriteOutput(outputFile, out); err != nil {
		m.logger.Error("writing merged document failed", err, logging.String("output", outputFile))
		return &apperrors.MergeError{Stage: apperrors.StageWrite, Path: outputFile, Cause: err}
	}
	m.logger.Info("merged document written",
		logging.String("output", outputFile),
		logging.Int64("bytes", out.Size()))
	m.emit(Event{Stage: StageDone, Total: len(sources)})
	return nil
}

func (m *Merger) merge(ctx context.Context, sources []io.ReadCloser, paths []string) (_ *bytes.Reader, err error) {
	defer closeAll(sources, m.logger)

	start := m.now()
	ctx, span := m.tracer.Start(ctx, "merge.MergeContents",
		trace.WithAttributes(attribute.Int("merge.sources", len(sources))))
	var size int64
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int64("merge.bytes", size))
		}
		span.End()
		m.observe(len(sources), size, m.now().Sub(start), err)
	}()

	if len(sources) == 0 {
		return nil, apperrors.NewMergeError(apperrors.StageInput, apperrors.ErrNoSources)
	}

	readers := make([]io.ReadSeeker, len(sources))
	for i, src := range sources {
		path := pathAt(paths, i)
		m.emit(Event{Stage: StageReading, Index: i, Total: len(sources), Path: path})
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewMergeError(apperrors.StageRead, err)
		}
		if src == nil {
			return nil, &apperrors.MergeError{Stage: apperrors.StageRead, Path: path, Cause: fmt.Errorf("source %d is nil", i)}
		}
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, &apperrors.MergeError{Stage: apperrors.StageRead, Path: path, Cause: err}
		}
		m.logger.Debug("source read", logging.Int("index", i), logging.String("path", path), logging.Int("bytes", len(data)))
		readers[i] = bytes.NewReader(data)
	}

	m.emit(Event{Stage: StageStamping, Total: len(sources)})
	if err := m.meta.Validate(); err != nil {
		return nil, apperrors.NewMergeError(apperrors.StageMetadata, err)
	}

	m.emit(Event{Stage: StageMerging, Total: len(sources)})
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewMergeError(apperrors.StageEngine, err)
	}
	var buf bytes.Buffer
	req := Request{Sources: readers, Info: m.meta, Date: m.now()}
	if err := m.engine.Merge(ctx, req, &buf); err != nil {
		m.logger.Error("engine merge failed", err, logging.Int("sources", len(sources)))
		return nil, apperrors.NewMergeError(apperrors.StageEngine, err)
	}

	size = int64(buf.Len())
	m.logger.Info("documents merged", logging.Int("sources", len(sources)), logging.Int64("bytes", size))
	return bytes.NewReader(buf.Bytes()), nil
}

func (m *Merger) emit(e Event) {
	if m.progress != nil {
		m.progress(e)
	}
}

func (m *Merger) observe(sources int, size int64, d time.Duration, err error) {
	if m.recorder != nil {
		m.recorder.ObserveMerge(sources, size, d, err)
	}
}

func pathAt(paths []string, i int) string {
	if i < len(paths) {
		return paths[i]
	}
	return ""
}

// closeAll closes every non-nil source. Close errors are logged, not returned.
func closeAll(sources []io.ReadCloser, logger logging.Logger) {
	var errs []error
	for _, src := range sources {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("closing sources", err)
	}
}
