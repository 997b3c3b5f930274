package analysis

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/periphsim/datarecording"
	"github.com/tebeka/atexit"
)

// PerfAnalyzerBackend is a backend that can store performance data entries.
type PerfAnalyzerBackend interface {
	AddDataEntry(entry PerfAnalyzerEntry)
	Flush()
}

// CSVBackend writes data entries into a CSV file.
type CSVBackend struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVPerfAnalyzerBackend creates a backend that writes to filename.csv,
// truncating the file if it exists.
func NewCSVPerfAnalyzerBackend(filename string) *CSVBackend {
	file, err := os.Create(filename + ".csv")
	if err != nil {
		log.Panicf("cannot create file %s.csv", filename)
	}

	b := &CSVBackend{
		file:   file,
		writer: csv.NewWriter(file),
	}

	b.writeHeader()

	atexit.Register(b.Flush)

	return b
}

func (b *CSVBackend) writeHeader() {
	err := b.writer.Write([]string{
		"Start", "End", "Where", "What", "EntryType", "Value", "Unit",
	})
	if err != nil {
		log.Panic(err)
	}
}

// AddDataEntry writes one entry as a CSV row.
func (b *CSVBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	err := b.writer.Write([]string{
		fmt.Sprintf("%.10f", entry.Start),
		fmt.Sprintf("%.10f", entry.End),
		entry.Where,
		entry.What,
		entry.EntryType,
		fmt.Sprintf("%.10f", entry.Value),
		entry.Unit,
	})
	if err != nil {
		log.Panic(err)
	}
}

// Flush writes all the buffered rows to the file.
func (b *CSVBackend) Flush() {
	b.writer.Flush()

	if err := b.writer.Error(); err != nil {
		log.Panic(err)
	}
}

// perfTableEntry is the row layout of the perf table. The column names
// avoid SQL keywords so that the generated statements stay valid.
type perfTableEntry struct {
	StartTime float64
	EndTime   float64
	Location  string `periphsim_data:"index"`
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// SQLiteBackend stores data entries in the perf table of a SQLite database.
type SQLiteBackend struct {
	recorder datarecording.DataRecorder
}

// NewSQLitePerfAnalyzerBackend creates a backend that writes to
// filename.sqlite3. The file must not already exist.
func NewSQLitePerfAnalyzerBackend(filename string) *SQLiteBackend {
	recorder := datarecording.NewDataRecorder(filename)
	recorder.CreateTable("perf", perfTableEntry{})

	return &SQLiteBackend{
		recorder: recorder,
	}
}

// AddDataEntry stores one entry in the perf table.
func (b *SQLiteBackend) AddDataEntry(entry PerfAnalyzerEntry) {
	b.recorder.InsertData("perf", perfTableEntry{
		StartTime: float64(entry.Start),
		EndTime:   float64(entry.End),
		Location:  entry.Where,
		What:      entry.What,
		EntryType: entry.EntryType,
		Value:     entry.Value,
		Unit:      entry.Unit,
	})
}

// Flush writes all the buffered rows to the database.
func (b *SQLiteBackend) Flush() {
	b.recorder.Flush()
}
