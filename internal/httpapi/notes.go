package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/raphaelgruber/voicejournal/internal/models"
)

func (h *Handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.app.Notes.List(r.Context(), userFrom(r.Context()))
	if err != nil {
		fail(w, r, err, "Failed to get voice notes")
		return
	}
	ok(w, http.StatusOK, "Voice notes retrieved successfully", notes)
}

func (h *Handlers) getNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.app.Notes.Get(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err, "Failed to get voice note")
		return
	}
	ok(w, http.StatusOK, "Voice note retrieved successfully", note)
}

func (h *Handlers) updateNote(w http.ResponseWriter, r *http.Request) {
	patch, err := parseJSON[models.VoiceNotePatch](r)
	if err != nil {
		fail(w, r, err, "Failed to update voice note")
		return
	}
	note, err := h.app.Notes.Update(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		fail(w, r, err, "Failed to update voice note")
		return
	}
	ok(w, http.StatusOK, "Voice note updated successfully", note)
}

func (h *Handlers) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Notes.Delete(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err, "Failed to delete voice note")
		return
	}
	ok(w, http.StatusOK, "Voice note deleted successfully", nil)
}
