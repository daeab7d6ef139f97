package grading_test

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/alama/core/grading"
	testutil "github.com/trezcool/alama/tests"
)

func fmtPoints(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func assertTable(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("Tabulate() mismatch:\n%s", diff)
}

func Test_Service_Tabulate(t *testing.T) {
	crs := testutil.LoadCourse(t)
	repo := newMemRepo()
	for _, g := range []struct {
		student, assignment string
		points              float64
	}{
		{"Bilbo Baggins", "Attendance 1", 1},
		{"Bilbo Baggins", "Attendance 2", 0},
		{"Bilbo Baggins", "Attendance 3", 1},
		{"Bilbo Baggins", "Assignment 1", 8},
		{"Bilbo Baggins", "Assignment 2", 6},
		{"Frodo Baggins", "Attendance 1", 1},
		{"Frodo Baggins", "Attendance 2", 1},
		{"Frodo Baggins", "Attendance 3", 1},
		{"Frodo Baggins", "Assignment 1", 10},
		{"Frodo Baggins", "Assignment 2", 9},
	} {
		grade(repo, g.student, g.assignment, g.points)
	}
	svc := grading.NewService(crs, repo, nil, nil)

	bilboTotal, err := svc.PersonTotal("Bilbo Baggins")
	if err != nil {
		t.Fatal(err)
	}
	frodoTotal, err := svc.PersonTotal("Frodo Baggins")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := svc.Tabulate(&buf, grading.TabulateOptions{}); err != nil {
		t.Fatalf("Tabulate() failed: %v", err)
	}
	want := strings.Join([]string{
		"Student\tAttendance 1\tAttendance 2\tAttendance 3\tAssignment 1\tAssignment 2\tTotal",
		"Bilbo Baggins\t1\t0\t1\t8\t6\t" + fmtPoints(bilboTotal),
		"Frodo Baggins\t1\t1\t1\t10\t9\t" + fmtPoints(frodoTotal),
		"",
	}, "\n")
	assertTable(t, buf.String(), want)

	// statistics rows
	buf.Reset()
	if err := svc.Tabulate(&buf, grading.TabulateOptions{Statistics: true}); err != nil {
		t.Fatalf("Tabulate() failed: %v", err)
	}
	stats := grading.GonumStats{}
	totals := []float64{bilboTotal, frodoTotal}
	want += strings.Join([]string{
		"--",
		"Mean\t1.00\t0.50\t1.00\t9.00\t7.50\t" + fmt.Sprintf("%.2f", stats.Mean(totals)),
		"Std. Dev.\t0.00\t0.50\t0.00\t1.00\t1.50\t" + fmt.Sprintf("%.2f", stats.PopStdDev(totals)),
		"",
	}, "\n")
	assertTable(t, buf.String(), want)
}

func Test_Service_Tabulate_partial(t *testing.T) {
	crs := testutil.LoadCourse(t)
	repo := newMemRepo()
	// Only Bilbo, only Assignment 1: every other column and row drops out
	// and there is no Total column until every assignment has a grade.
	grade(repo, "Bilbo Baggins", "Assignment 1", 8)
	svc := grading.NewService(crs, repo, nil, nil)

	var buf bytes.Buffer
	if err := svc.Tabulate(&buf, grading.TabulateOptions{}); err != nil {
		t.Fatalf("Tabulate() failed: %v", err)
	}
	want := "Student\tAssignment 1\nBilbo Baggins\t8\n"
	assertTable(t, buf.String(), want)
}
