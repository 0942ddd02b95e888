package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

// Expected produces the list of file paths a verification run checks.
// Sources are polymorphic: a fixed list or a generator evaluated at
// verification time (e.g. the artifact list derived from the distribution
// matrix and the bound settings).
type Expected func() []string

func Static(files []string) Expected {
	return func() []string { return files }
}

// Record is the per-file presence observation, in input order.
type Record struct {
	Path    string
	Present bool
}

// Report is the structured outcome of one verification call. It is read-only
// after construction.
type Report struct {
	Records  []Record
	Expected int
	Missing  int
}

// Pass reports whether every expected file was present. A failing report is a
// publish-blocking gate, not a warning.
func (r *Report) Pass() bool {
	return r.Missing == 0
}

func (r *Report) MissingFiles() []string {
	var missing []string
	for _, rec := range r.Records {
		if !rec.Present {
			missing = append(missing, rec.Path)
		}
	}
	return missing
}

// Err returns nil for a passing report and an error naming the aggregate
// counts otherwise.
func (r *Report) Err() error {
	if r.Pass() {
		return nil
	}
	return fmt.Errorf("%d of %d expected files missing", r.Missing, r.Expected)
}

// Write renders the per-file listing plus a summary line.
func (r *Report) Write(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("FILE", "STATUS")
	for _, rec := range r.Records {
		status := "present"
		if !rec.Present {
			status = "MISSING"
		}
		if err := table.Append([]string{rec.Path, status}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if r.Pass() {
		_, err := fmt.Fprintf(w, "all %d expected files present\n", r.Expected)
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d expected files missing\n", r.Missing, r.Expected)
	return err
}

// Run checks each expected path for existence on the file system at call
// time. The report preserves input order.
func Run(expected Expected) *Report {
	files := expected()
	report := &Report{
		Records:  make([]Record, 0, len(files)),
		Expected: len(files),
	}
	for _, f := range files {
		_, err := os.Stat(f)
		present := err == nil
		if !present {
			report.Missing++
		}
		report.Records = append(report.Records, Record{Path: f, Present: present})
	}
	return report
}
