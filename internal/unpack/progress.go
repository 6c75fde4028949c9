package unpack

// Progress describes one handled archive entry. TotalCount stays zero until
// both metadata manifests have been internalized, at which point it becomes
// metadata-so-far + files + conf_files + links.
type Progress struct {
	Entry        string
	EntrySize    int64
	IsMetadata   bool
	IsConf       bool
	ExtractCount int
	TotalCount   int
}

// ProgressFunc observes per-entry progress. It runs synchronously on the
// unpacking goroutine and must not mutate engine state or block.
type ProgressFunc func(p *Progress)

// EventKind identifies an unpack lifecycle event.
type EventKind int

const (
	EventUnpackStart EventKind = iota
	EventUnpackDone
	EventUnpackFail
	EventConfigFilePreserved
)

// Event is one unpack lifecycle notification.
type Event struct {
	Kind    EventKind
	Pkgname string
	Version string
	Message string
	Err     error
}

// EventFunc observes unpack lifecycle events.
type EventFunc func(ev Event)
