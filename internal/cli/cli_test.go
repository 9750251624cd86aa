package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/app"
	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type cannedModel map[string]string

func (m cannedModel) Complete(_ context.Context, req llm.Request) (string, error) {
	for k, v := range m {
		if strings.Contains(req.System, k) {
			return v, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

type cannedTranscriber string

func (t cannedTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return string(t), nil
}

type harness struct {
	store *store.Memory
	blobs *blob.Memory
}

// newHarness points the CLI at in-memory backends shared across commands.
func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("JOURNAL_STORE", config.StoreMemory)
	t.Setenv("JOURNAL_BLOB", config.BlobMemory)
	t.Setenv("JOURNAL_LOG_FILE", filepath.Join(t.TempDir(), "journal.log"))
	t.Setenv("JOURNAL_TIMEZONE", "UTC")
	t.Setenv("JOURNAL_MCP_USER", "")

	h := &harness{store: store.NewMemory(), blobs: blob.NewMemory()}
	prev := newApp
	newApp = func(ctx context.Context, c config.Config, logger *slog.Logger) (*app.App, error) {
		return app.NewWithDeps(ctx, c, logger, app.Deps{
			Store:       h.store,
			Blobs:       h.blobs,
			Transcriber: cannedTranscriber("Walked to the bakery in Graz and felt calm."),
			Model: cannedModel{
				"titles for voice notes":  "Bakery Walk",
				"first-person summary":    "I walked to the bakery and felt calm.",
				"answers questions about": "You went to the bakery.",
				"recurring themes":        `{"themes":[{"theme":"Daily Walks","description":"Short errands on foot","noteCount":1}]}`,
			},
		})
	}
	t.Cleanup(func() { newApp = prev })
	return h
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	userID, verbose = "", false
	notesLimit, deleteForce, clearForce = 20, false, false
	exportNote, recordTitle, recordDuration = "", "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	shutdown()
	return out.String(), err
}

func (h *harness) seed(t *testing.T, userID, title string) *models.VoiceNote {
	t.Helper()
	overview := "A short summary."
	n, err := h.store.CreateVoiceNote(context.Background(), models.VoiceNoteInput{
		UserID:        userID,
		Title:         title,
		Transcription: "Full text of " + title,
		Overview:      &overview,
	})
	require.NoError(t, err)
	return n
}

func TestRequiresUser(t *testing.T) {
	newHarness(t)
	_, err := run(t, "", "notes", "list")
	assert.ErrorContains(t, err, "no user")
}

func TestRecord(t *testing.T) {
	h := newHarness(t)
	audio := filepath.Join(t.TempDir(), "clip.webm")
	require.NoError(t, os.WriteFile(audio, []byte("fake-audio"), 0o644))

	out, err := run(t, "", "record", audio, "--user", "alice", "--duration", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Bakery Walk")
	assert.Contains(t, out, "I walked to the bakery and felt calm.")

	notes, err := h.store.ListVoiceNotes(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].Duration)
	assert.Equal(t, 30, *notes[0].Duration)
	assert.Equal(t, 1, h.blobs.Deletes())
}

func TestRecordMissingFile(t *testing.T) {
	newHarness(t)
	_, err := run(t, "", "record", "/does/not/exist.webm", "-u", "alice")
	assert.ErrorContains(t, err, "read audio")
}

func TestNotesListAndShow(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "First")
	second := h.seed(t, "alice", "Second")
	h.seed(t, "bob", "Hidden")

	out, err := run(t, "", "notes", "list", "-u", "alice", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Voice notes (1 of 2)")
	assert.Contains(t, out, "Second")
	assert.NotContains(t, out, "Hidden")

	out, err = run(t, "", "notes", "show", second.ID, "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Full text of Second")

	_, err = run(t, "", "notes", "show", second.ID, "-u", "bob")
	assert.ErrorContains(t, err, "voice note not found")
}

func TestNotesDeleteConfirmation(t *testing.T) {
	h := newHarness(t)
	n := h.seed(t, "alice", "Doomed")

	out, err := run(t, "n\n", "notes", "delete", n.ID, "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	_, err = run(t, "y\n", "notes", "delete", n.ID, "-u", "alice")
	require.NoError(t, err)
	got, err := h.store.GetVoiceNote(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNotesExport(t *testing.T) {
	h := newHarness(t)
	n := h.seed(t, "alice", "Exported")
	dir := t.TempDir()

	out, err := run(t, "", "notes", "export", dir, "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 notes")

	content, err := os.ReadFile(filepath.Join(dir, noteFilename(*n, time.UTC)))
	require.NoError(t, err)

	parts := strings.SplitN(string(content), "---\n", 3)
	require.Len(t, parts, 3)
	var front map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &front))
	assert.Equal(t, n.ID, front["id"])
	assert.Equal(t, "Exported", front["title"])
	assert.NotContains(t, front, "transcription")
	assert.Contains(t, parts[2], "# Exported")
	assert.Contains(t, parts[2], "Full text of Exported")
}

func TestChatCommands(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "Bakery")

	out, err := run(t, "", "chat", "ask", "where", "did", "I", "go?", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "You went to the bakery.")

	out, err = run(t, "", "chat", "history", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "where did I go?")
	assert.Contains(t, out, "Journal")

	out, err = run(t, "", "chat", "clear", "-u", "alice", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 messages.")
}

func TestThemesAndStats(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "alice", "Bakery")

	out, err := run(t, "", "insights", "themes", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily Walks")
	assert.Contains(t, out, "(1 notes)")

	out, err = run(t, "", "stats", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Runtime Statistics")
}

func TestNoteMarkdownWithoutOverview(t *testing.T) {
	n := models.VoiceNote{
		ID:            "abcdef0123456789",
		Title:         "Plain Note!",
		Transcription: "Body",
		CreatedAt:     time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC),
	}
	vienna, err := time.LoadLocation("Europe/Vienna")
	require.NoError(t, err)

	b, err := noteMarkdown(n, vienna)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "> ")
	assert.True(t, strings.HasSuffix(string(b), "Body\n"))
	assert.Equal(t, "2025-03-02-plain-note-abcdef01.md", noteFilename(n, vienna))

	n.Title = "???"
	assert.Equal(t, "2025-03-02-abcdef01.md", noteFilename(n, vienna))
}
