package telemetry

import (
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelBroken
	LevelCount
)

// Event is a single report captured by Recorder.
type Event struct {
	Level Level
	// ID is the report id for broken, warning and count reports and the message for
	// info and debug reports.
	ID     string
	Params []any
	Count  int64
}

// Recorder implements API by keeping every report in memory, it is meant to be
// used in tests to assert on what a component has reported.
type Recorder struct {
	mutex  sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) push(e Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push(Event{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push(Event{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportInfo(msg string, params ...any) {
	r.push(Event{Level: LevelInfo, ID: msg, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push(Event{Level: LevelDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push(Event{Level: LevelCount, ID: id, Count: count})
}

// Events returns a copy of every report so far.
func (r *Recorder) Events() []Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the reports made at the given level.
func (r *Recorder) Filter(level Level) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// IDs returns the ids of the reports made at the given level, in order.
func (r *Recorder) IDs(level Level) []string {
	var out []string
	for _, e := range r.Filter(level) {
		out = append(out, e.ID)
	}
	return out
}
