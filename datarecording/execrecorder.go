package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// execTimeFormat keeps nanosecond precision so consecutive runs are ordered.
const execTimeFormat = "2006-01-02 15:04:05.000000000"

type execInfo struct {
	Property string
	Value    string
}

// execRecorder writes one row per property about the current execution into
// the exec_info table.
type execRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []execInfo
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	r := &execRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	r.setupTable()

	return r
}

func (r *execRecorder) setupTable() {
	r.recorder.CreateTable(r.tableName, execInfo{})
}

// Start buffers the properties that are known when the execution begins.
// They are not inserted until End so that a crashed run leaves an empty
// exec_info table behind.
func (r *execRecorder) Start() {
	r.buffer("Start Time", time.Now().Format(execTimeFormat))
	r.buffer("Command", strings.Join(os.Args, " "))
	r.buffer("Working Directory", r.workingDirectory())
}

// End writes the buffered properties plus the end time to the database.
func (r *execRecorder) End() {
	r.buffer("End Time", time.Now().Format(execTimeFormat))

	for _, e := range r.entries {
		r.recorder.InsertData(r.tableName, e)
	}

	r.entries = nil

	r.recorder.Flush()
}

func (r *execRecorder) buffer(property, value string) {
	r.entries = append(r.entries, execInfo{
		Property: property,
		Value:    value,
	})
}

func (r *execRecorder) workingDirectory() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(execPath)
}
