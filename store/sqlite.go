// Package store persists a cache's fault-handling event log to SQLite, for
// after-the-fact inspection of what was evicted and loaded and when. It
// never persists cache or backend contents, only the event metadata
// (kind, slot, page, offset, timestamp) described in DESIGN.md's store
// section.
package store

import (
	"database/sql"
	"fmt"
	"os"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// Kind distinguishes the two fault-handling events this store records.
type Kind string

const (
	// KindLoad records a backend page being copied into a cache slot.
	KindLoad Kind = "load"
	// KindEvict records an occupied cache slot being flushed back to the
	// backend before a new page replaces it.
	KindEvict Kind = "evict"
)

// Event is one fault-handling occurrence in a cache's lifetime.
type Event struct {
	ID        string
	Kind      Kind
	Slot      uint64
	Page      uint64
	Offset    uint64
	TimeNanos int64
}

// EventWriter buffers Events and flushes them to a SQLite database in
// batched transactions, the way tracing.SQLiteTraceWriter buffers Tasks.
type EventWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName    string
	batchSize int
	pending   []Event
}

// NewEventWriter creates a writer targeting the given database file path.
// If path is empty, a unique name is generated from a new xid at Init time.
func NewEventWriter(path string) *EventWriter {
	w := &EventWriter{
		dbName:    path,
		batchSize: 1000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// Init creates (or opens) the database and prepares the insert statement.
// Init panics on failure, matching this module's programmer-error-vs-OS-
// failure split: a store that cannot open its own database file is a
// configuration error, not a recoverable runtime condition.
func (w *EventWriter) Init() {
	if w.dbName == "" {
		w.dbName = "uffdcache_events_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", w.dbName)
	if err != nil {
		panic(fmt.Errorf("store: open %s: %w", w.dbName, err))
	}
	w.DB = db

	w.mustExecute(`
		CREATE TABLE IF NOT EXISTS event
		(
			event_id   VARCHAR(200) NOT NULL,
			kind       VARCHAR(10)  NOT NULL,
			slot       INTEGER      NOT NULL,
			page       INTEGER      NOT NULL,
			offset     INTEGER      NOT NULL,
			time_nanos INTEGER      NOT NULL
		);
	`)
	w.mustExecute(`CREATE INDEX IF NOT EXISTS event_kind_index ON event (kind);`)
	w.mustExecute(`CREATE INDEX IF NOT EXISTS event_page_index ON event (page);`)

	stmt, err := w.Prepare(
		`INSERT INTO event (event_id, kind, slot, page, offset, time_nanos) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		panic(fmt.Errorf("store: prepare insert: %w", err))
	}
	w.statement = stmt
}

// Write buffers an event, auto-generating its ID, and flushes once the
// batch fills.
func (w *EventWriter) Write(e Event) {
	if e.ID == "" {
		e.ID = xid.New().String()
	}

	w.pending = append(w.pending, e)
	if len(w.pending) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes every buffered event inside a single transaction.
func (w *EventWriter) Flush() {
	if len(w.pending) == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	for _, e := range w.pending {
		_, err := w.statement.Exec(e.ID, string(e.Kind), e.Slot, e.Page, e.Offset, e.TimeNanos)
		if err != nil {
			panic(fmt.Errorf("store: insert event %+v: %w", e, err))
		}
	}
	w.mustExecute("COMMIT TRANSACTION")

	w.pending = nil
}

func (w *EventWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(fmt.Errorf("store: exec %q: %w", query, err))
	}
	return res
}

// Query selects a filtered subset of the event log. Zero-value fields are
// unfiltered.
type Query struct {
	Kind            Kind
	Page            *uint64
	EnableTimeRange bool
	StartNanos      int64
	EndNanos        int64
}

// EventReader reads a previously written event log back out.
type EventReader struct {
	*sql.DB

	filename string
}

// NewEventReader opens an existing event log database for reading.
func NewEventReader(filename string) *EventReader {
	return &EventReader{filename: filename}
}

// Init opens the underlying database connection.
func (r *EventReader) Init() {
	if _, err := os.Stat(r.filename); err != nil {
		panic(fmt.Errorf("store: event log %s: %w", r.filename, err))
	}

	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		panic(fmt.Errorf("store: open %s: %w", r.filename, err))
	}
	r.DB = db
}

// ListEvents returns the events matching query, most recent first.
func (r *EventReader) ListEvents(query Query) []Event {
	sqlStr := `
		SELECT event_id, kind, slot, page, offset, time_nanos
		FROM event
		WHERE 1=1
	`

	if query.Kind != "" {
		sqlStr += fmt.Sprintf(" AND kind = '%s'", query.Kind)
	}
	if query.Page != nil {
		sqlStr += fmt.Sprintf(" AND page = %d", *query.Page)
	}
	if query.EnableTimeRange {
		sqlStr += fmt.Sprintf(" AND time_nanos BETWEEN %d AND %d", query.StartNanos, query.EndNanos)
	}
	sqlStr += " ORDER BY time_nanos DESC"

	rows, err := r.Query(sqlStr)
	if err != nil {
		panic(fmt.Errorf("store: query: %w", err))
	}
	defer func() { _ = rows.Close() }()

	events := []Event{}
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Slot, &e.Page, &e.Offset, &e.TimeNanos); err != nil {
			panic(fmt.Errorf("store: scan: %w", err))
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}

	return events
}
