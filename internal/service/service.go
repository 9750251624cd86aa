// Package service implements the voice journal operations: the enrichment
// pipeline, metadata generators, theme analysis, chat over notes and note
// management.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/voicejournal/internal/llm"
)

var (
	ErrEmptyTranscription = errors.New("cannot process empty transcription")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrNothingToAnalyze   = errors.New("no voice notes to analyze")
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrNoteNotFound       = errors.New("voice note not found")
	ErrEmptyPatch         = errors.New("no fields to update")
	errEmptyCompletion    = errors.New("empty completion")
)

// LanguageModel runs single-turn completions. *llm.Model implements it.
type LanguageModel interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Transcriber turns audio into text. *transcribe.Client implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Stage names a pipeline step. Only transcribe and persist failures are fatal.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageTitle      Stage = "title"
	StageOverview   Stage = "overview"
	StageInsight    Stage = "insight"
	StageLocation   Stage = "location"
	StagePersist    Stage = "persist"
)

// PipelineError reports a fatal pipeline failure. TempPath points at the
// uploaded audio so it can be cleaned up or retried by hand.
type PipelineError struct {
	Stage    Stage
	Reason   string
	TempPath string
	Err      error
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Stage, e.Reason)
	if e.TempPath != "" {
		msg += " (temp audio: " + e.TempPath + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PipelineError) Unwrap() error { return e.Err }
