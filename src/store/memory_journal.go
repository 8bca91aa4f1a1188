package store

import (
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// JournalEntry records one operation applied to the in-memory store.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Namespace string    `json:"namespace"`
	Details   string    `json:"details"`
}

// Journal is the ordered operation log of a MemoryClient. Tests use it to
// assert how many round trips a query made.
type Journal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func (j *Journal) record(command, namespace string, details interface{}) {
	entry := JournalEntry{
		Timestamp: time.Now(),
		Command:   command,
		Namespace: namespace,
		Details:   describe(details),
	}

	j.mu.Lock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()
}

// Entries returns a copy of the journal.
func (j *Journal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Count returns how many times command ran against namespace. An empty
// namespace counts every namespace.
func (j *Journal) Count(command, namespace string) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := 0
	for _, e := range j.entries {
		if e.Command == command && (namespace == "" || e.Namespace == namespace) {
			n++
		}
	}
	return n
}

func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}

func describe(details interface{}) string {
	if details == nil {
		return ""
	}
	if doc, ok := details.(bson.M); ok {
		data, err := bson.MarshalExtJSON(doc, true, false)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(details)
}
