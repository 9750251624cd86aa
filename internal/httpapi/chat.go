package httpapi

import (
	"net/http"
)

type askRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

func (h *Handlers) ask(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[askRequest](r)
	if err != nil {
		fail(w, r, err, "Failed to get response from LLM")
		return
	}
	turn, err := h.app.Chat.Ask(r.Context(), userFrom(r.Context()), req.Message)
	if err != nil {
		fail(w, r, err, "Failed to get response from LLM")
		return
	}
	ok(w, http.StatusOK, "LLM responded successfully", turn)
}

func (h *Handlers) chatHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.app.Chat.History(r.Context(), userFrom(r.Context()))
	if err != nil {
		fail(w, r, err, "Failed to get chat messages")
		return
	}
	ok(w, http.StatusOK, "Chat messages retrieved successfully", msgs)
}

func (h *Handlers) clearChat(w http.ResponseWriter, r *http.Request) {
	n, err := h.app.Chat.Clear(r.Context(), userFrom(r.Context()))
	if err != nil {
		fail(w, r, err, "Failed to clear chat history")
		return
	}
	ok(w, http.StatusOK, "Chat history cleared successfully", map[string]int{"deleted": n})
}

func (h *Handlers) analyzeThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.app.Themes.Analyze(r.Context(), userFrom(r.Context()))
	if err != nil {
		fail(w, r, err, "Failed to analyze themes")
		return
	}
	ok(w, http.StatusOK, "Themes analyzed successfully", themes)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "Statistics retrieved successfully", h.app.Metrics.Snapshot())
}
