package tracing

import (
	"database/sql"
	"strings"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/periphsim/sim"
)

// DataRecorderTraceReader reads traces from a database written by a DBTracer
// backed by a datarecording.DataRecorder.
type DataRecorderTraceReader struct {
	*sql.DB
}

// NewDataRecorderTraceReader opens a trace database file.
func NewDataRecorderTraceReader(filename string) *DataRecorderTraceReader {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	return &DataRecorderTraceReader{
		DB: db,
	}
}

// ListComponents returns the names of all the locations that recorded tasks.
func (r *DataRecorderTraceReader) ListComponents() []string {
	rows, err := r.Query("SELECT DISTINCT Location FROM trace")
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var components []string
	for rows.Next() {
		var component string
		if err := rows.Scan(&component); err != nil {
			panic(err)
		}

		components = append(components, component)
	}

	return components
}

const taskColumns = "t.TaskID, t.ParentID, t.Kind, t.What, t.Location, " +
	"t.StartTime, t.EndTime"

const parentTaskColumns = "pt.TaskID, pt.ParentID, pt.Kind, pt.What, " +
	"pt.Location, pt.StartTime, pt.EndTime"

// ListTasks returns the tasks matching the query.
func (r *DataRecorderTraceReader) ListTasks(query TaskQuery) []Task {
	stmt, args := taskQueryStmt(query)

	rows, err := r.Query(stmt, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		tasks = append(tasks, scanTask(rows, query.EnableParentTask))
	}

	return tasks
}

// taskQueryStmt builds the task listing statement, with one placeholder per
// filter value.
func taskQueryStmt(query TaskQuery) (string, []any) {
	var stmt strings.Builder
	var args []any

	stmt.WriteString("SELECT " + taskColumns)
	if query.EnableParentTask {
		stmt.WriteString(", " + parentTaskColumns)
	}

	stmt.WriteString(" FROM trace t")
	if query.EnableParentTask {
		stmt.WriteString(" LEFT JOIN trace pt ON t.ParentID = pt.TaskID")
	}

	filters := []struct {
		active bool
		clause string
		value  any
	}{
		{query.ID != "", "t.TaskID = ?", query.ID},
		{query.ParentID != "", "t.ParentID = ?", query.ParentID},
		{query.Kind != "", "t.Kind = ?", query.Kind},
		{query.Where != "", "t.Location = ?", query.Where},
	}

	sep := " WHERE "
	for _, f := range filters {
		if !f.active {
			continue
		}

		stmt.WriteString(sep + f.clause)
		args = append(args, f.value)
		sep = " AND "
	}

	if query.EnableTimeRange {
		stmt.WriteString(sep + "t.EndTime > ? AND t.StartTime < ?")
		args = append(args, query.StartTime, query.EndTime)
	}

	return stmt.String(), args
}

// scanTask reads one task row. With the parent join enabled, the parent
// columns may be NULL for tasks whose parent never recorded.
func scanTask(rows *sql.Rows, withParent bool) Task {
	t := Task{}

	if !withParent {
		err := rows.Scan(&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Where,
			&t.StartTime, &t.EndTime)
		if err != nil {
			panic(err)
		}

		return t
	}

	var (
		pID, pParentID, pKind, pWhat, pWhere sql.NullString
		pStart, pEnd                         sql.NullFloat64
	)

	err := rows.Scan(&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Where,
		&t.StartTime, &t.EndTime,
		&pID, &pParentID, &pKind, &pWhat, &pWhere, &pStart, &pEnd)
	if err != nil {
		panic(err)
	}

	if pID.Valid {
		t.ParentTask = &Task{
			ID:        pID.String,
			ParentID:  pParentID.String,
			Kind:      pKind.String,
			What:      pWhat.String,
			Where:     pWhere.String,
			StartTime: sim.VTimeInSec(pStart.Float64),
			EndTime:   sim.VTimeInSec(pEnd.Float64),
		}
	}

	return t
}

// ListTaskSteps returns the steps recorded for one task, in time order.
func (r *DataRecorderTraceReader) ListTaskSteps(taskID string) []TaskStep {
	rows, err := r.Query(
		"SELECT Time, What FROM trace_steps WHERE TaskID = ? ORDER BY Time",
		taskID)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	steps := []TaskStep{}
	for rows.Next() {
		s := TaskStep{}

		err := rows.Scan(&s.Time, &s.What)
		if err != nil {
			panic(err)
		}

		steps = append(steps, s)
	}

	return steps
}
