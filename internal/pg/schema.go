package pg

// SchemaSQL creates the voice journal tables. Timestamps use clock_timestamp()
// so rows written in one transaction still order by insertion.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS voice_notes (
    id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       text NOT NULL CHECK (user_id <> ''),
    title         text NOT NULL,
    transcription text NOT NULL,
    overview      text,
    key_insight   text,
    location      text,
    duration      integer,
    created_at    timestamptz NOT NULL DEFAULT clock_timestamp(),
    updated_at    timestamptz NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS voice_notes_user_created ON voice_notes (user_id, created_at DESC);

DO $$ BEGIN
    CREATE TYPE chat_role AS ENUM ('user', 'assistant');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS chat_messages (
    id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    text NOT NULL CHECK (user_id <> ''),
    role       chat_role NOT NULL,
    content    text NOT NULL CHECK (content <> ''),
    created_at timestamptz NOT NULL DEFAULT clock_timestamp(),
    updated_at timestamptz NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS chat_messages_user_created ON chat_messages (user_id, created_at);
`
