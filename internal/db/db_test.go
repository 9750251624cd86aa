package db

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client

// TestMain starts one SurrealDB container for the package. With -short the
// container is skipped and integration tests skip themselves.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	// ryuk misbehaves in some CI sandboxes
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil, metrics.NewCollector(nil))
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func requireDB(t *testing.T) (*Client, context.Context) {
	t.Helper()
	if testing.Short() || testDB == nil {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return testDB, ctx
}

func TestVoiceNoteCRUD(t *testing.T) {
	client, ctx := requireDB(t)

	overview := "I planned the garden."
	duration := 42
	created, err := client.CreateVoiceNote(ctx, models.VoiceNoteInput{
		UserID:        "crud-user",
		Title:         "Garden plans",
		Transcription: "Tomatoes go by the fence this year.",
		Overview:      &overview,
		Duration:      &duration,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Garden plans", created.Title)
	require.NotNil(t, created.Overview)
	assert.Equal(t, overview, *created.Overview)
	assert.Nil(t, created.KeyInsight)
	assert.False(t, created.CreatedAt.IsZero())
	defer func() { _, _ = client.DeleteVoiceNote(ctx, created.ID) }()

	got, err := client.GetVoiceNote(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Transcription, got.Transcription)

	time.Sleep(10 * time.Millisecond)
	title := "Vegetable garden"
	updated, err := client.UpdateVoiceNote(ctx, created.ID, models.VoiceNotePatch{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at should refresh")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	missing, err := client.UpdateVoiceNote(ctx, "does-not-exist", models.VoiceNotePatch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := client.DeleteVoiceNote(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = client.GetVoiceNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListVoiceNotesOrdering(t *testing.T) {
	client, ctx := requireDB(t)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		n, err := client.CreateVoiceNote(ctx, models.VoiceNoteInput{UserID: "order-user", Title: title, Transcription: title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
		time.Sleep(5 * time.Millisecond)
	}
	defer func() {
		for _, id := range ids {
			_, _ = client.DeleteVoiceNote(ctx, id)
		}
	}()

	notes, err := client.ListVoiceNotes(ctx, "order-user")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "three", notes[0].Title)
	assert.Equal(t, "one", notes[2].Title)
}

func TestChatMessages(t *testing.T) {
	client, ctx := requireDB(t)

	for _, in := range []models.ChatMessageInput{
		{UserID: "chat-a", Role: models.RoleUser, Content: "What did I plant?"},
		{UserID: "chat-a", Role: models.RoleAssistant, Content: "Tomatoes."},
		{UserID: "chat-b", Role: models.RoleUser, Content: "Hello"},
	} {
		_, err := client.CreateChatMessage(ctx, in)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	msgs, err := client.ListChatMessages(ctx, "chat-a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	n, err := client.DeleteChatMessages(ctx, "chat-a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs, err = client.ListChatMessages(ctx, "chat-a")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	others, err := client.ListChatMessages(ctx, "chat-b")
	require.NoError(t, err)
	require.Len(t, others, 1)

	ok, err := client.DeleteChatMessage(ctx, others[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.DeleteChatMessage(ctx, others[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChatMessageRoleAssertion(t *testing.T) {
	client, ctx := requireDB(t)

	_, err := client.CreateChatMessage(ctx, models.ChatMessageInput{UserID: "u", Role: "system", Content: "x"})
	assert.Error(t, err)
}
