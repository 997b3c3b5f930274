package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded trace database.",
	Long: `Report reads the trace database written by a run and prints, per ` +
		`location and task kind, how many tasks completed and how much ` +
		`simulated time they covered.`,
	Run: func(cmd *cobra.Command, _ []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			fmt.Fprintln(os.Stderr, "Error: a trace database must be given with --db")
			os.Exit(1)
		}

		printTraceReport(dbPath)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("db", "", "trace database file to summarize")
}

type taskGroup struct {
	where, kind, what string

	count int
	total sim.VTimeInSec
}

func printTraceReport(dbPath string) {
	reader := tracing.NewDataRecorderTraceReader(resolveDBPath(dbPath))
	defer reader.Close()

	components := reader.ListComponents()
	sort.Strings(components)

	groups := make(map[string]*taskGroup)
	var order []string

	for _, component := range components {
		tasks := reader.ListTasks(tracing.TaskQuery{Where: component})

		for _, task := range tasks {
			key := task.Where + "\x00" + task.Kind + "\x00" + task.What

			g, ok := groups[key]
			if !ok {
				g = &taskGroup{where: task.Where, kind: task.Kind, what: task.What}
				groups[key] = g
				order = append(order, key)
			}

			g.count++
			g.total += task.EndTime - task.StartTime
		}
	}

	fmt.Printf("%-16s %-12s %-10s %7s %16s %16s\n",
		"Location", "Kind", "What", "Count", "TotalTime", "AvgTime")

	for _, key := range order {
		g := groups[key]

		avg := sim.VTimeInSec(0)
		if g.count > 0 {
			avg = g.total / sim.VTimeInSec(g.count)
		}

		fmt.Printf("%-16s %-12s %-10s %7d %16.9f %16.9f\n",
			g.where, g.kind, g.what, g.count, float64(g.total), float64(avg))
	}
}

// resolveDBPath accepts the database name with or without the .sqlite3
// suffix. Opening a path that does not exist would create an empty database,
// so missing files are rejected here.
func resolveDBPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}

	if !strings.HasSuffix(path, ".sqlite3") {
		suffixed := path + ".sqlite3"
		if _, err := os.Stat(suffixed); err == nil {
			return suffixed
		}
	}

	fmt.Fprintf(os.Stderr, "Error: trace database %s does not exist\n", path)
	os.Exit(1)
	return ""
}
