// Package models defines the records stored by the voice journal.
package models

import "time"

// VoiceNote is one transcribed and enriched recording.
type VoiceNote struct {
	ID            string    `json:"id" yaml:"id"`
	UserID        string    `json:"userId" yaml:"user_id"`
	Title         string    `json:"title" yaml:"title"`
	Transcription string    `json:"transcription" yaml:"-"`
	Overview      *string   `json:"overview,omitempty" yaml:"overview,omitempty"`
	KeyInsight    *string   `json:"keyInsight,omitempty" yaml:"key_insight,omitempty"`
	Location      *string   `json:"location,omitempty" yaml:"location,omitempty"`
	Duration      *int      `json:"duration,omitempty" yaml:"duration,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Clone returns a deep copy of n. The optional fields are copied, not shared.
func (n VoiceNote) Clone() VoiceNote {
	n.Overview = clonePtr(n.Overview)
	n.KeyInsight = clonePtr(n.KeyInsight)
	n.Location = clonePtr(n.Location)
	n.Duration = clonePtr(n.Duration)
	return n
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// VoiceNoteInput holds the fields for creating a note. ID and timestamps are
// assigned by the store.
type VoiceNoteInput struct {
	UserID        string
	Title         string
	Transcription string
	Overview      *string
	KeyInsight    *string
	Location      *string
	Duration      *int
}

// VoiceNotePatch holds a partial update. Nil fields are left unchanged.
type VoiceNotePatch struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Transcription *string `json:"transcription,omitempty" validate:"omitempty,min=1"`
	Overview      *string `json:"overview,omitempty"`
	KeyInsight    *string `json:"keyInsight,omitempty"`
	Location      *string `json:"location,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p VoiceNotePatch) IsEmpty() bool {
	return p.Title == nil && p.Transcription == nil && p.Overview == nil &&
		p.KeyInsight == nil && p.Location == nil
}

// Apply copies the set fields of p onto n.
func (p VoiceNotePatch) Apply(n *VoiceNote) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Transcription != nil {
		n.Transcription = *p.Transcription
	}
	if p.Overview != nil {
		n.Overview = p.Overview
	}
	if p.KeyInsight != nil {
		n.KeyInsight = p.KeyInsight
	}
	if p.Location != nil {
		n.Location = p.Location
	}
}
