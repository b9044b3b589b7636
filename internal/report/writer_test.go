package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crawlpage/crawlpage/internal/engine"
)

func testSummary() *Summary {
	return NewSummary([]*engine.Result{
		{
			Origin:         "https://books.example.com/",
			StartPage:      1,
			PagesCompleted: 3,
			RecordsAdded:   60,
			TotalPages:     3,
			TotalRecords:   60,
			Elapsed:        2 * time.Second,
		},
		{
			Origin:         "https://quotes.example.com/",
			StartPage:      5,
			PagesCompleted: 1,
			RecordsAdded:   10,
			TotalPages:     5,
			TotalRecords:   50,
			Blocked:        true,
			Elapsed:        900 * time.Millisecond,
		},
	})
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	s := testSummary()
	if len(s.Runs) != 2 {
		t.Fatalf("Runs = %d, want 2", len(s.Runs))
	}
	if s.TotalRecords() != 110 {
		t.Errorf("TotalRecords() = %d, want 110", s.TotalRecords())
	}
	if !s.AnyBlocked() {
		t.Error("AnyBlocked() = false, want true")
	}
	if got := s.Runs[0].Status(); got != "Complete" {
		t.Errorf("Runs[0].Status() = %q, want Complete", got)
	}
	if got := s.Runs[1].Status(); got != "BLOCKED" {
		t.Errorf("Runs[1].Status() = %q, want BLOCKED", got)
	}
}

func TestNewSummaryNilResult(t *testing.T) {
	t.Parallel()

	s := NewSummary([]*engine.Result{nil})
	if len(s.Runs) != 1 {
		t.Fatalf("Runs = %d, want 1 placeholder", len(s.Runs))
	}
}

func TestSummarySetError(t *testing.T) {
	t.Parallel()

	s := testSummary()
	s.SetError("https://quotes.example.com/", errors.New("crawl blocked by target site"))
	if s.Runs[1].Error == "" {
		t.Error("SetError did not record the error on the matching run")
	}
	if s.Runs[0].Error != "" {
		t.Error("SetError touched the wrong run")
	}
	s.SetError("https://quotes.example.com/", nil)
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSimpleWriter(&buf).Write(testSummary())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() returned %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"CRAWL SUMMARY",
		"https://books.example.com/",
		"https://quotes.example.com/",
		"Status:          BLOCKED",
		"Total records across all origins: 110",
		"Re-run later to resume",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("simple output missing %q", want)
		}
	}
}

func TestSimpleWriterQuietRun(t *testing.T) {
	t.Parallel()

	s := NewSummary([]*engine.Result{
		{
			Origin:       "https://done.example.com/",
			StartPage:    4,
			TotalPages:   3,
			TotalRecords: 60,
		},
	})

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).Write(s); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "already complete (60 records)") {
		t.Errorf("quiet run not summarized, got:\n%s", buf.String())
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Runs) != 2 {
		t.Errorf("decoded Runs = %d, want 2", len(decoded.Runs))
	}
	if decoded.Runs[0].RecordsAdded != 60 {
		t.Errorf("decoded RecordsAdded = %d, want 60", decoded.Runs[0].RecordsAdded)
	}
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(testSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded VersionedSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", decoded.Version)
	}
	if decoded.Summary == nil || len(decoded.Summary.Runs) != 2 {
		t.Error("wrapped summary missing runs")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Crawl Summary",
		"## Runs",
		"`https://books.example.com/`",
		"BLOCKED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	n, err := mw.Write(testSummary())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("MultiWriter returned %d bytes, want %d", n, a.Len()+b.Len())
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("MultiWriter skipped a destination")
	}
}
