package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/schema"
)

// DB wraps the SQLite database holding every document collection.
type DB struct {
	*sql.DB
	bus    *bus.Bus
	schema *schema.Validator
	now    func() time.Time
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{DB: db, schema: schema.Default(), now: time.Now}, nil
}

// SetBus attaches the bus that receives a Change after every committed write.
// A DB without a bus writes silently.
func (db *DB) SetBus(b *bus.Bus) { db.bus = b }

func (db *DB) publish(collection, id string, op bus.Op, keys ...string) {
	metrics.StoreWrites.WithLabelValues(collection, string(op)).Inc()
	if db.bus == nil {
		return
	}
	db.bus.PublishChange(bus.Change{Collection: collection, DocID: id, Op: op, Keys: keys})
}

func (db *DB) millis() int64 { return db.now().UnixMilli() }

func newID() string { return uuid.NewString() }

func encodeList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}
