package models

// Theme is a recurring topic found across a user's notes. Themes are derived
// on demand and never stored.
type Theme struct {
	Theme       string `json:"theme"`
	Description string `json:"description"`
	NoteCount   int    `json:"noteCount"`
}
