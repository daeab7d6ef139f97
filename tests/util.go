package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
)

// CourseConf is the fixture roster used across the test suites.
const CourseConf = `[course]
name: Physics 101
assignments: Attendance 1, Attendance 2, Attendance 3, Assignment 1, Assignment 2
robot: Robot101
professors: Gandalf
assistants: Sauron
students: Bilbo Baggins, Frodo Baggins

[Attendance 1]
points: 1
weight: 0.1/3
due: 2026-01-05

[Attendance 2]
points: 1
weight: 0.1/3
due: 2026-01-12

[Attendance 3]
points: 1
weight: 0.1/3
due: 2026-01-19

[Assignment 1]
points: 10
weight: 0.4/2
due: 2026-01-19
submittable: yes

[Assignment 2]
points: 10
weight: 0.4/2
due: 2026-01-26

[Robot101]
emails: robot101@phys.example.edu

[Gandalf]
nickname: Mithrandir
emails: g@wizards.example.org

[Sauron]
emails: eye@mordor.example.org

[Bilbo Baggins]
nickname: Bilbo
emails: bb@shire.org

[Frodo Baggins]
emails: fb@shire.org
`

// LoadCourse parses the fixture roster.
func LoadCourse(t *testing.T) *course.Course {
	t.Helper()
	c, err := course.Load(strings.NewReader(CourseConf), core.NopLogger())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return c
}

// Message renders a minimal RFC 5322 message for pipeline tests.
func Message(from, subject, body string) string {
	return fmt.Sprintf(
		"From: <%s>\r\nTo: <robot101@phys.example.edu>\r\nSubject: %s\r\nDate: Mon, 12 Jan 2026 10:00:00 +0000\r\n\r\n%s",
		from, subject, body)
}
