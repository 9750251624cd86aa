package db

// SchemaSQL defines the voice journal tables.
// updated_at uses VALUE so every write refreshes it.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS voice_note SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON voice_note TYPE string ASSERT $value != "";
    DEFINE FIELD IF NOT EXISTS title ON voice_note TYPE string;
    DEFINE FIELD IF NOT EXISTS transcription ON voice_note TYPE string;
    DEFINE FIELD IF NOT EXISTS overview ON voice_note TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS key_insight ON voice_note TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS location ON voice_note TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS duration ON voice_note TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS created_at ON voice_note TYPE datetime DEFAULT time::now() READONLY;
    DEFINE FIELD IF NOT EXISTS updated_at ON voice_note TYPE datetime VALUE time::now();

    DEFINE INDEX IF NOT EXISTS voice_note_user ON voice_note FIELDS user_id, created_at;

    DEFINE TABLE IF NOT EXISTS chat_message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON chat_message TYPE string ASSERT $value != "";
    DEFINE FIELD IF NOT EXISTS role ON chat_message TYPE string ASSERT $value IN ["user", "assistant"];
    DEFINE FIELD IF NOT EXISTS content ON chat_message TYPE string ASSERT $value != "";
    DEFINE FIELD IF NOT EXISTS created_at ON chat_message TYPE datetime DEFAULT time::now() READONLY;
    DEFINE FIELD IF NOT EXISTS updated_at ON chat_message TYPE datetime VALUE time::now();

    DEFINE INDEX IF NOT EXISTS chat_message_user ON chat_message FIELDS user_id, created_at;
`
