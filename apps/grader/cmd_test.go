package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
	emailsvc "github.com/trezcool/alama/services/email"
	"github.com/trezcool/alama/storage/gradedir"
	testutil "github.com/trezcool/alama/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	crs := testutil.LoadCourse(t)
	store := gradedir.NewStore(t.TempDir(), crs, core.NopLogger())
	out := new(bytes.Buffer)
	cli := &commandLine{
		logger:  core.NopLogger(),
		course:  crs,
		store:   store,
		svc:     grading.NewService(crs, store, nil, core.NopLogger()),
		mailSvc: emailsvc.NewConsoleServiceMock(),
		out:     out,
	}
	return cli, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "initialize", args: []string{"initialize"}},
		{name: "tabulate", args: []string{"tabulate"}},
		{name: "tabulate with stats", args: []string{"tabulate", "-stats"}},
		{name: "tabulate with fallback stats", args: []string{"tabulate", "-naive", "-stats"}},
		{name: "email", args: []string{"email"}},
		{name: "todo", args: []string{"todo"}},
	}
	for _, tt := range tests {
		args := append([]string{"grader"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_tabulate(t *testing.T) {
	cli, out := setup(t)
	if err := cli.store.WriteGrade(grading.Grade{Student: "Bilbo Baggins", Assignment: "Assignment 1", Points: 8}); err != nil {
		t.Fatal(err)
	}

	if err := cli.run([]string{"grader", "tabulate"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	want := "Student\tAssignment 1\nBilbo Baggins\t8\n"
	if out.String() != want {
		t.Errorf("tabulate output = %q, want %q", out.String(), want)
	}
}

func Test_commandLine_mailpipe(t *testing.T) {
	cli, _ := setup(t)

	// one message from stdin
	cli.in = strings.NewReader(testutil.Message("bb@shire.org", "[submit] assignment 1", "here"))
	if err := cli.run([]string{"grader", "mailpipe"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	subTime, err := cli.store.SubmissionTime("Bilbo Baggins", "Assignment 1")
	if err != nil || subTime.IsZero() {
		t.Errorf("SubmissionTime() = %v, %v, want the submission archived", subTime, err)
	}

	// a batch of message files
	dir := t.TempDir()
	path := filepath.Join(dir, "msg1")
	raw := testutil.Message("fb@shire.org", "[submit] assignment 1", "mine")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cli.run([]string{"grader", "mailpipe", path}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	subTime, err = cli.store.SubmissionTime("Frodo Baggins", "Assignment 1")
	if err != nil || subTime.IsZero() {
		t.Errorf("SubmissionTime() = %v, %v, want the file batch processed", subTime, err)
	}

	// missing file
	if err := cli.run([]string{"grader", "mailpipe", filepath.Join(dir, "nope")}); err == nil {
		t.Error("cli.run() error = nil, want an error for a missing file")
	}
}

func Test_commandLine_email(t *testing.T) {
	cli, out := setup(t)
	if err := cli.store.WriteGrade(grading.Grade{Student: "Bilbo Baggins", Assignment: "Assignment 1", Points: 8}); err != nil {
		t.Fatal(err)
	}

	sentBefore := len(emailsvc.SentMessages)
	if err := cli.run([]string{"grader", "email"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages)-sentBefore)
	}
	if !strings.Contains(out.String(), "sent 1 message(s)") {
		t.Errorf("email output = %q, want the sent count", out.String())
	}
	if g, err := cli.store.ReadGrade("Bilbo Baggins", "Assignment 1"); err != nil || g == nil || !g.Notified {
		t.Errorf("ReadGrade() = %+v, %v, want the grade marked notified", g, err)
	}

	// nothing left to report without -old
	out.Reset()
	if err := cli.run([]string{"grader", "email"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "sent 0 message(s)") {
		t.Errorf("email output = %q, want nothing sent", out.String())
	}
	if err := cli.run([]string{"grader", "email", "-old"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "sent 1 message(s)") {
		t.Errorf("email output = %q, want the reported grade re-sent", out.String())
	}
}

func Test_commandLine_todo(t *testing.T) {
	cli, out := setup(t)

	if err := cli.run([]string{"grader", "todo"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "nothing to grade") {
		t.Errorf("todo output = %q, want nothing to grade", out.String())
	}

	out.Reset()
	if _, err := cli.store.ArchiveSubmission("Bilbo Baggins", "Assignment 1", []byte("raw")); err != nil {
		t.Fatal(err)
	}
	if err := cli.run([]string{"grader", "todo"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Bilbo Baggins\tAssignment 1") {
		t.Errorf("todo output = %q, want the pending submission listed", out.String())
	}
}
