package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/ir"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("journal: session not found")

// SessionInfo describes one recorded session.
type SessionInfo struct {
	ID            string `json:"id"`
	Document      string `json:"document,omitempty"`
	EngineVersion string `json:"engine_version"`
	FinalDigest   string `json:"final_digest,omitempty"`
	Finished      bool   `json:"finished"`
	EventCount    int    `json:"event_count"`
}

// Entry is one journaled event.
type Entry struct {
	Pos   int64        `json:"pos"`
	Seq   int64        `json:"seq"`
	Event engine.Event `json:"event"`
}

// BeginSession registers a new session. Recording into an id that already
// exists is an error.
func (j *Journal) BeginSession(ctx context.Context, id, document string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, document, engine_version)
		VALUES (?, ?, ?)
	`, id, document, ir.EngineVersion)
	if err != nil {
		return fmt.Errorf("begin session %s: %w", id, err)
	}
	return nil
}

// Append records ev as the session's next event.
func (j *Journal) Append(ctx context.Context, sessionID string, seq int64, ev engine.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, pos, seq, type, payload)
		SELECT ?, COALESCE(MAX(pos), 0) + 1, ?, ?, ?
		FROM events WHERE session_id = ?
	`, sessionID, seq, string(ev.Type), string(payload), sessionID)
	if err != nil {
		return fmt.Errorf("append event to %s: %w", sessionID, err)
	}
	return nil
}

// FinishSession stores the final state digest and marks the session done.
func (j *Journal) FinishSession(ctx context.Context, sessionID, digest string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE sessions SET final_digest = ?, finished = 1 WHERE id = ?
	`, digest, sessionID)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session %s: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish session %s: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

const sessionColumns = `
	s.id, s.document, s.engine_version, s.final_digest, s.finished,
	(SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
`

// Sessions lists all recorded sessions ordered by id.
// Returns an empty slice (not nil) when there are none.
func (j *Journal) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions s
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionInfo{}
	for rows.Next() {
		info, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Session returns one session, or ErrSessionNotFound.
func (j *Journal) Session(ctx context.Context, id string) (SessionInfo, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions s
		WHERE s.id = ?
	`, id)
	info, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, ErrSessionNotFound
	}
	return info, err
}

// Entries returns a session's events ordered by pos.
// Returns an empty slice (not nil) when none were recorded.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT pos, seq, payload
		FROM events
		WHERE session_id = ?
		ORDER BY pos ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			payload string
		)
		if err := rows.Scan(&e.Pos, &e.Seq, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Event); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", e.Pos, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Events returns just the events of a session, ready for engine.Replay.
func (j *Journal) Events(ctx context.Context, sessionID string) ([]engine.Event, error) {
	entries, err := j.Entries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(entries))
	for i, e := range entries {
		events[i] = e.Event
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (SessionInfo, error) {
	var (
		info     SessionInfo
		finished int
	)
	if err := sc.Scan(&info.ID, &info.Document, &info.EngineVersion,
		&info.FinalDigest, &finished, &info.EventCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionInfo{}, err
		}
		return SessionInfo{}, fmt.Errorf("scan session: %w", err)
	}
	info.Finished = finished != 0
	return info, nil
}

// Recorder binds the journal to one session. It satisfies engine.Recorder.
type Recorder struct {
	j         *Journal
	sessionID string
}

// Recorder returns an engine.Recorder appending to sessionID.
func (j *Journal) Recorder(sessionID string) *Recorder {
	return &Recorder{j: j, sessionID: sessionID}
}

// Record implements engine.Recorder.
func (r *Recorder) Record(ctx context.Context, seq int64, ev engine.Event) error {
	return r.j.Append(ctx, r.sessionID, seq, ev)
}

var _ engine.Recorder = (*Recorder)(nil)
