package core

import (
	"fmt"
	"sync"
	"testing"
)

const concurrencyInput = "name,latitude,longitude,summary,dtstart\n" +
	"Pier,37.8,-122.4,Launch,2024-03-01\n" +
	"\"Dock, east\",59.91,10.75,\"Say \"\"hi\"\"\",2024-04-02"

type convertOutcome struct {
	out string
	err string
}

func convertOnce(data, source, target string) convertOutcome {
	out, err := Convert(data, source, target)
	if err != nil {
		return convertOutcome{err: err.Error()}
	}
	return convertOutcome{out: out}
}

// Parallel conversions through every codec must produce the same result as
// a sequential run. Run with -race to check for shared state.
func TestConvert_ConcurrentUse(t *testing.T) {
	const workers = 16

	type job struct {
		source, target, data string
	}
	var jobs []job
	for _, f := range Formats() {
		name := string(f.Name)
		out, err := FromCSV(concurrencyInput, name)
		if err != nil {
			t.Fatalf("FromCSV(%s) error = %v", name, err)
		}
		jobs = append(jobs,
			job{source: "csv", target: name, data: concurrencyInput},
			job{source: name, target: "csv", data: out},
			job{source: name, target: "json", data: out},
		)
	}

	want := make([]convertOutcome, len(jobs))
	for i, j := range jobs {
		want[i] = convertOnce(j.data, j.source, j.target)
	}
	wantExtract, err := ExtractColumns(concurrencyInput, []string{"summary", "name"}, []Filter{{Column: "dtstart", Value: "2024", Operator: OpStartsWith}})
	if err != nil {
		t.Fatalf("ExtractColumns() error = %v", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	fail := func(format string, args ...any) {
		mu.Lock()
		failures = append(failures, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for k := range jobs {
				i := (k + w) % len(jobs)
				j := jobs[i]
				if got := convertOnce(j.data, j.source, j.target); got != want[i] {
					fail("%s -> %s: got %+v, want %+v", j.source, j.target, got, want[i])
				}
			}
			got, err := ExtractColumns(concurrencyInput, []string{"summary", "name"}, []Filter{{Column: "dtstart", Value: "2024", Operator: OpStartsWith}})
			if err != nil || got != wantExtract {
				fail("ExtractColumns: got %q, %v", got, err)
			}
		}(w)
	}
	wg.Wait()

	for _, f := range failures {
		t.Error(f)
	}
}
