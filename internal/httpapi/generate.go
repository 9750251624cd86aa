package httpapi

import (
	"net/http"
)

type transcriptionRequest struct {
	Transcription string `json:"transcription" validate:"required"`
}

func (h *Handlers) generateTitle(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[transcriptionRequest](r)
	if err != nil {
		fail(w, r, err, "Failed to generate title")
		return
	}
	title, err := h.app.Generator.Title(r.Context(), req.Transcription)
	if err != nil {
		fail(w, r, err, "Failed to generate title")
		return
	}
	ok(w, http.StatusOK, "Title generated successfully", map[string]string{"title": title})
}

func (h *Handlers) generateOverview(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[transcriptionRequest](r)
	if err != nil {
		fail(w, r, err, "Failed to generate overview")
		return
	}
	overview, err := h.app.Generator.Overview(r.Context(), req.Transcription)
	if err != nil {
		fail(w, r, err, "Failed to generate overview")
		return
	}
	ok(w, http.StatusOK, "Overview generated successfully", map[string]string{"overview": overview})
}

func (h *Handlers) extractInsight(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[transcriptionRequest](r)
	if err != nil {
		fail(w, r, err, "Failed to extract insight")
		return
	}
	insight, err := h.app.Generator.KeyInsight(r.Context(), req.Transcription)
	if err != nil {
		fail(w, r, err, "Failed to extract insight")
		return
	}
	ok(w, http.StatusOK, "Insight extracted successfully", map[string]string{"insight": insight})
}

func (h *Handlers) extractLocation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[transcriptionRequest](r)
	if err != nil {
		fail(w, r, err, "Failed to extract location")
		return
	}
	loc, found, err := h.app.Generator.Location(r.Context(), req.Transcription)
	if err != nil {
		fail(w, r, err, "Failed to extract location")
		return
	}
	msg := "Location extracted successfully"
	if !found {
		msg = "No location mentioned"
	}
	ok(w, http.StatusOK, msg, map[string]any{"location": loc, "found": found})
}
