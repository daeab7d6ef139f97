package gradedir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
	testutil "github.com/trezcool/alama/tests"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), testutil.LoadCourse(t), core.NopLogger())
}

func Test_fsName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "Bilbo Baggins", want: "Bilbo_Baggins"},
		{name: "quotes dropped", in: `Merry "Meriadoc" Brandybuck`, want: "Merry_Meriadoc_Brandybuck"},
		{name: "dots and apostrophes", in: "Assignment 1. d'Artagnan", want: "Assignment_1_dArtagnan"},
		{name: "plain", in: "Attendance", want: "Attendance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fsName(tt.in); got != tt.want {
				t.Errorf("fsName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStore_gradeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name    string
		points  float64
		comment string
	}{
		{name: "integer", points: 1},
		{name: "large", points: 95},
		{name: "fractional", points: 2.5},
		{name: "scientific", points: 6.022e23},
		{name: "with comment", points: 8, comment: "Good work"},
		{name: "multi-line comment", points: 7.5, comment: "line one\nline two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := grading.Grade{
				Student:    "Bilbo Baggins",
				Assignment: "Assignment 1",
				Points:     tt.points,
				Comment:    tt.comment,
			}
			if err := s.WriteGrade(in); err != nil {
				t.Fatalf("WriteGrade() failed: %v", err)
			}
			got, err := s.ReadGrade("Bilbo Baggins", "Assignment 1")
			if err != nil {
				t.Fatalf("ReadGrade() failed: %v", err)
			}
			if got == nil {
				t.Fatal("ReadGrade() = nil, want the written record")
			}
			if got.Points != tt.points {
				t.Errorf("Points = %v, want %v exactly", got.Points, tt.points)
			}
			if got.Comment != tt.comment {
				t.Errorf("Comment = %q, want %q", got.Comment, tt.comment)
			}
		})
	}
}

func TestStore_ungradedIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	g, err := s.ReadGrade("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatalf("ReadGrade() error = %v, want nil for a missing record", err)
	}
	if g != nil {
		t.Errorf("ReadGrade() = %+v, want nil", g)
	}
}

func TestStore_unparsableGrade(t *testing.T) {
	s := newTestStore(t)
	dir := s.recordDir("Bilbo Baggins", "Assignment 1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, gradeFile), []byte("eight\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReadGrade("Bilbo Baggins", "Assignment 1")
	if err == nil || !core.IsStoreError(err) {
		t.Fatalf("ReadGrade() error = %v, want StoreError", err)
	}

	// a single bad file must not abort enumeration
	if err := s.WriteGrade(grading.Grade{Student: "Frodo Baggins", Assignment: "Assignment 1", Points: 9}); err != nil {
		t.Fatal(err)
	}
	grades, err := s.EnumerateGrades(nil, nil)
	if err != nil {
		t.Fatalf("EnumerateGrades() failed: %v", err)
	}
	if len(grades) != 1 || grades[0].Student != "Frodo Baggins" {
		t.Errorf("EnumerateGrades() = %+v, want the bad record skipped", grades)
	}
}

func TestStore_enumerateOrder(t *testing.T) {
	s := newTestStore(t)
	// write in an order unlike the roster's
	for _, g := range []grading.Grade{
		{Student: "Frodo Baggins", Assignment: "Assignment 2", Points: 9},
		{Student: "Bilbo Baggins", Assignment: "Assignment 2", Points: 6},
		{Student: "Bilbo Baggins", Assignment: "Attendance 1", Points: 1},
	} {
		if err := s.WriteGrade(g); err != nil {
			t.Fatal(err)
		}
	}

	grades, err := s.EnumerateGrades(nil, nil)
	if err != nil {
		t.Fatalf("EnumerateGrades() failed: %v", err)
	}
	want := []struct{ student, assignment string }{
		{"Bilbo Baggins", "Attendance 1"},
		{"Bilbo Baggins", "Assignment 2"},
		{"Frodo Baggins", "Assignment 2"},
	}
	if len(grades) != len(want) {
		t.Fatalf("got %d grades, want %d", len(grades), len(want))
	}
	for i, w := range want {
		if grades[i].Student != w.student || grades[i].Assignment != w.assignment {
			t.Errorf("grades[%d] = %s/%s, want %s/%s (roster order)",
				i, grades[i].Student, grades[i].Assignment, w.student, w.assignment)
		}
	}

	// filters
	grades, err = s.EnumerateGrades(
		func(name string) bool { return name == "Bilbo Baggins" },
		func(name string) bool { return name == "Assignment 2" },
	)
	if err != nil {
		t.Fatalf("EnumerateGrades() failed: %v", err)
	}
	if len(grades) != 1 || grades[0].Points != 6 {
		t.Errorf("EnumerateGrades(filters) = %+v, want Bilbo's Assignment 2 only", grades)
	}
}

func TestStore_markers(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteGrade(grading.Grade{Student: "Bilbo Baggins", Assignment: "Assignment 1", Points: 8}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLate("Bilbo Baggins", "Assignment 1"); err != nil {
		t.Fatalf("SetLate() failed: %v", err)
	}
	if err := s.SetNotified("Bilbo Baggins", "Assignment 1"); err != nil {
		t.Fatalf("SetNotified() failed: %v", err)
	}

	g, err := s.ReadGrade("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatal(err)
	}
	if !g.Late || !g.Notified {
		t.Errorf("Late = %v, Notified = %v, want both true", g.Late, g.Notified)
	}

	// rewriting the grade makes the notification stale
	time.Sleep(10 * time.Millisecond)
	if err := s.WriteGrade(grading.Grade{Student: "Bilbo Baggins", Assignment: "Assignment 1", Points: 9}); err != nil {
		t.Fatal(err)
	}
	g, err = s.ReadGrade("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatal(err)
	}
	if g.Notified {
		t.Error("Notified = true, want false after the grade changed")
	}
}

func TestStore_submissions(t *testing.T) {
	s := newTestStore(t)

	subTime, err := s.SubmissionTime("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatalf("SubmissionTime() failed: %v", err)
	}
	if !subTime.IsZero() {
		t.Errorf("SubmissionTime() = %v, want zero with nothing archived", subTime)
	}

	path, err := s.ArchiveSubmission("Bilbo Baggins", "Assignment 1", []byte("raw message"))
	if err != nil {
		t.Fatalf("ArchiveSubmission() failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading archived submission: %v", err)
	}
	if string(content) != "raw message" {
		t.Errorf("archived content = %q, want the raw message verbatim", content)
	}
	if filepath.Base(filepath.Dir(path)) != "new" {
		t.Errorf("path = %q, want the message under mail/new", path)
	}

	subTime, err = s.SubmissionTime("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatal(err)
	}
	if subTime.IsZero() {
		t.Error("SubmissionTime() = zero, want the archived submission's time")
	}

	// a second submission moves the time forward
	time.Sleep(10 * time.Millisecond)
	if _, err := s.ArchiveSubmission("Bilbo Baggins", "Assignment 1", []byte("again")); err != nil {
		t.Fatal(err)
	}
	newer, err := s.SubmissionTime("Bilbo Baggins", "Assignment 1")
	if err != nil {
		t.Fatal(err)
	}
	if !newer.After(subTime) {
		t.Errorf("SubmissionTime() = %v, want newer than %v", newer, subTime)
	}
}

func TestStore_initialize(t *testing.T) {
	s := newTestStore(t)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	for _, rec := range []struct{ student, assignment string }{
		{"Bilbo Baggins", "Attendance 1"},
		{"Frodo Baggins", "Assignment 2"},
		{"Gandalf", "Assignment 1"},
	} {
		dir := s.recordDir(rec.student, rec.assignment)
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("Stat(%s) = %v, %v, want the record dir stubbed out", dir, fi, err)
		}
	}
}
