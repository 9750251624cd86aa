package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/surrealdb/surrealdb.go"
)

// wrapQueryError maps SurrealDB statement errors onto store sentinels.
// Anything unrecognized is returned unchanged.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if !errors.As(err, &queryErr) {
		return err
	}
	msg := queryErr.Message
	switch {
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "Transaction conflict"):
		return fmt.Errorf("%w: %s", store.ErrConflict, msg)
	// ASSERT clauses on user_id, role and content report this way.
	case strings.Contains(msg, "but field must conform to"):
		return fmt.Errorf("%w: %s", store.ErrInvalid, msg)
	default:
		return err
	}
}
