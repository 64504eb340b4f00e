// Package pipeline defines the stages of an annogen run and the progress
// events a run reports while moving through them.
package pipeline

import "time"

// Stage describes a high-level phase of a run.
type Stage string

const (
	// StageLock waits for the exclusive output lock.
	StageLock Stage = "lock"
	// StageSnapshot rebuilds state from the previous output.
	StageSnapshot Stage = "snapshot"
	// StageLoad reads source files.
	StageLoad Stage = "load"
	// StageScan applies one source file.
	StageScan Stage = "scan"
	// StageDrain replays template also-lines to a fixed point.
	StageDrain Stage = "drain"
	// StageRender serialises the state.
	StageRender Stage = "render"
	// StageWrite replaces the output file.
	StageWrite Stage = "write"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageLock, StageSnapshot, StageLoad, StageScan, StageDrain, StageRender, StageWrite}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusSkipped marks a stage that had nothing to do (e.g. a snapshot cache hit).
	StatusSkipped Status = "skipped"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Emit sends evt to sink when there is one.
func Emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
