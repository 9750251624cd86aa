package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

// RecordingInput is one completed recording. The audio has already been
// uploaded to TempBlob by the caller.
type RecordingInput struct {
	UserID      string
	Audio       []byte
	ContentType string
	// Duration is the recording length in seconds, nil when unknown.
	Duration *int
	// Title is an optional user-supplied title.
	Title    string
	TempBlob BlobRef
	// OnStage, when set, is called as each step starts. It runs on the
	// pipeline goroutine and must not block.
	OnStage func(Stage)
}

func (in RecordingInput) enter(stage Stage) {
	if in.OnStage != nil {
		in.OnStage(stage)
	}
}

// PipelineResult is a persisted note plus the handle of its temp-audio cleanup.
type PipelineResult struct {
	Note    *models.VoiceNote
	Cleanup *CleanupTask
}

// PipelineOptions toggles the optional enrichment steps.
type PipelineOptions struct {
	ExtractInsight  bool
	ExtractLocation bool
	// CleanupTimeout bounds the detached temp-audio deletion. Zero means one minute.
	CleanupTimeout time.Duration
}

// Pipeline turns a recording into an enriched, persisted voice note.
type Pipeline struct {
	transcriber Transcriber
	gen         *Generator
	notes       store.NoteStore
	opts        PipelineOptions
	mc          *metrics.Collector
	cleanup     *cleanupTracker
}

// NewPipeline creates a pipeline.
func NewPipeline(t Transcriber, gen *Generator, notes store.NoteStore, blobs blob.Store, mc *metrics.Collector, opts PipelineOptions) *Pipeline {
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = time.Minute
	}
	return &Pipeline{
		transcriber: t,
		gen:         gen,
		notes:       notes,
		opts:        opts,
		mc:          mc,
		cleanup:     &cleanupTracker{blobs: blobs, timeout: opts.CleanupTimeout},
	}
}

// Stages lists the steps Run will report through OnStage, in order.
func (p *Pipeline) Stages() []Stage {
	stages := []Stage{StageTranscribe, StageTitle, StageOverview}
	if p.opts.ExtractInsight {
		stages = append(stages, StageInsight)
	}
	if p.opts.ExtractLocation {
		stages = append(stages, StageLocation)
	}
	return append(stages, StagePersist)
}

// Run executes the pipeline. Only transcription and persistence failures are
// returned, as *PipelineError. Title, overview, insight and location failures
// are logged and leave the field at its default.
func (p *Pipeline) Run(ctx context.Context, in RecordingInput) (*PipelineResult, error) {
	if in.UserID == "" {
		return nil, ErrUnauthenticated
	}

	start := time.Now()
	log := slog.With("user_id", in.UserID, "temp_path", in.TempBlob.Path)

	in.enter(StageTranscribe)
	transcription, err := p.transcribe(ctx, in)
	if err != nil {
		p.mc.RecordResult(metrics.OpPipeline, time.Since(start), err)
		log.Warn("pipeline aborted", "stage", StageTranscribe, "error", err)
		return nil, &PipelineError{
			Stage:    StageTranscribe,
			Reason:   "transcription failed",
			TempPath: in.TempBlob.Path,
			Err:      err,
		}
	}

	in.enter(StageTitle)
	note := models.VoiceNoteInput{
		UserID:        in.UserID,
		Title:         p.title(ctx, log, in.Title, transcription),
		Transcription: transcription,
		Duration:      in.Duration,
	}

	in.enter(StageOverview)
	if overview, err := p.gen.Overview(ctx, transcription); err != nil {
		log.Warn("overview generation failed", "error", err)
	} else {
		note.Overview = &overview
	}

	if p.opts.ExtractInsight {
		in.enter(StageInsight)
		if insight, err := p.gen.KeyInsight(ctx, transcription); err != nil {
			log.Warn("key insight extraction failed", "error", err)
		} else if insight != "" {
			note.KeyInsight = &insight
		}
	}

	if p.opts.ExtractLocation {
		in.enter(StageLocation)
		if loc, found, err := p.gen.Location(ctx, transcription); err != nil {
			log.Warn("location extraction failed", "error", err)
		} else if found {
			note.Location = &loc
		}
	}

	in.enter(StagePersist)
	created, persistErr := p.notes.CreateVoiceNote(ctx, note)

	// The temp audio is released whether or not the insert succeeded.
	var task *CleanupTask
	if in.TempBlob.Path != "" {
		task = p.cleanup.start(ctx, in.TempBlob)
	}

	p.mc.RecordResult(metrics.OpPipeline, time.Since(start), persistErr)
	if persistErr != nil {
		log.Error("failed to persist voice note", "error", persistErr)
		return nil, &PipelineError{
			Stage:    StagePersist,
			Reason:   "failed to save voice note",
			TempPath: in.TempBlob.Path,
			Err:      persistErr,
		}
	}

	log.Info("voice note created", "note_id", created.ID, "title", created.Title,
		"has_overview", created.Overview != nil, "duration_ms", time.Since(start).Milliseconds())
	return &PipelineResult{Note: created, Cleanup: task}, nil
}

func (p *Pipeline) transcribe(ctx context.Context, in RecordingInput) (string, error) {
	if len(in.Audio) == 0 {
		return "", errors.New("no audio provided")
	}
	text, err := p.transcriber.Transcribe(ctx, in.Audio, in.ContentType)
	if err != nil {
		return "", err
	}
	// Stored exactly as the provider returned it.
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscription
	}
	return text, nil
}

func (p *Pipeline) title(ctx context.Context, log *slog.Logger, supplied, transcription string) string {
	if t := CleanTitle(supplied); t != "" {
		return t
	}
	t, err := p.gen.Title(ctx, transcription)
	if err != nil {
		log.Warn("title generation failed, using default", "error", err)
		return DefaultTitle
	}
	return t
}

// Drain waits for in-flight temp-audio deletions, for use at shutdown.
func (p *Pipeline) Drain(ctx context.Context) error {
	if err := p.cleanup.wait(ctx); err != nil {
		return fmt.Errorf("drain cleanup tasks: %w", err)
	}
	return nil
}
