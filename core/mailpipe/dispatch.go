package mailpipe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/grading"
)

// ResultKind tells the renderer what a dispatch produced.
type ResultKind int

const (
	// ResultReceipt acknowledges an archived submission.
	ResultReceipt ResultKind = iota
	// ResultRecords carries one student's (assignment, grade) sequence.
	ResultRecords
	// ResultTable carries per-person totals for the whole course.
	ResultTable
	// ResultGraded acknowledges a written grade.
	ResultGraded
)

// RecordEntry pairs an assignment with its grade, nil when ungraded.
type RecordEntry struct {
	Assignment *course.Assignment
	Grade      *grading.Grade
}

// TotalEntry is one row of a whole-course table.
type TotalEntry struct {
	Person *course.Person
	Total  float64
}

// Result is the structured payload a dispatch hands to the response layer.
type Result struct {
	Kind    ResultKind
	Intent  *Intent
	Records []RecordEntry // ResultRecords
	Totals  []TotalEntry  // ResultTable
	Late    bool          // ResultReceipt
}

// Dispatcher executes classified intents against the grade store. All
// authorization happens here, before any write.
type Dispatcher struct {
	course  *course.Course
	svc     *grading.Service
	repo    grading.Repository
	logger  core.Logger
	maxLate time.Duration
}

func NewDispatcher(c *course.Course, svc *grading.Service, repo grading.Repository, logger core.Logger, maxLate time.Duration) *Dispatcher {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Dispatcher{course: c, svc: svc, repo: repo, logger: logger, maxLate: maxLate}
}

func (d *Dispatcher) Dispatch(intent *Intent) (*Result, error) {
	switch intent.Tag {
	case TagSubmit:
		return d.submit(intent)
	case TagGet:
		return d.get(intent)
	case TagGrade:
		return d.grade(intent)
	}
	return nil, core.NewDispatchError(intent.Person.Name, "unhandled tag %q", intent.Tag)
}

func (d *Dispatcher) submit(intent *Intent) (*Result, error) {
	if !intent.Assignment.Submittable {
		return nil, core.NewDispatchError(intent.Person.Name,
			"%s is not open for submission", intent.Assignment.Name)
	}
	if !intent.Person.IsStudent() {
		return nil, core.NewDispatchError(intent.Person.Name, "only students submit work")
	}
	path, err := d.repo.ArchiveSubmission(intent.Student.Name, intent.Assignment.Name, intent.Message.Raw)
	if err != nil {
		return nil, err
	}
	d.logger.Info(fmt.Sprintf("archived submission from %s for %s at %s",
		intent.Student.Name, intent.Assignment.Name, path))

	res := &Result{Kind: ResultReceipt, Intent: intent}
	due := intent.Assignment.Due
	if !due.IsZero() && intent.Message.Received.After(due.Add(d.maxLate)) {
		res.Late = true
		if err := d.repo.SetLate(intent.Student.Name, intent.Assignment.Name); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (d *Dispatcher) get(intent *Intent) (*Result, error) {
	if intent.WholeCourse {
		return d.courseTable(intent)
	}
	var assignments []*course.Assignment
	if intent.Assignment != nil {
		assignments = []*course.Assignment{intent.Assignment}
	} else {
		for i := range d.course.Assignments {
			assignments = append(assignments, &d.course.Assignments[i])
		}
	}
	res := &Result{Kind: ResultRecords, Intent: intent}
	for _, a := range assignments {
		g, err := d.repo.ReadGrade(intent.Student.Name, a.Name)
		if err != nil {
			return nil, err
		}
		res.Records = append(res.Records, RecordEntry{Assignment: a, Grade: g})
		if g != nil && !g.Notified && intent.Student == intent.Person {
			if err := d.repo.SetNotified(intent.Student.Name, a.Name); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (d *Dispatcher) courseTable(intent *Intent) (*Result, error) {
	res := &Result{Kind: ResultTable, Intent: intent}
	for _, p := range d.course.Students() {
		total, err := d.svc.PersonTotal(p.Name)
		if err != nil {
			return nil, err
		}
		res.Totals = append(res.Totals, TotalEntry{Person: p, Total: total})
	}
	return res, nil
}

func (d *Dispatcher) grade(intent *Intent) (*Result, error) {
	if !intent.Person.IsStaff() && !intent.Person.IsRobot() {
		return nil, core.NewDispatchError(intent.Person.Name, "forbidden")
	}
	points, comment, err := ParseGradePayload(intent.Body)
	if err != nil {
		return nil, core.NewDispatchError(intent.Person.Name, "%v", err)
	}
	g := grading.Grade{
		Student:    intent.Student.Name,
		Assignment: intent.Assignment.Name,
		Points:     points,
		Comment:    comment,
	}
	if err := d.repo.WriteGrade(g); err != nil {
		return nil, err
	}
	d.logger.Info(fmt.Sprintf("%s graded %s on %s: %g",
		intent.Person.Name, intent.Student.Name, intent.Assignment.Name, points))
	return &Result{Kind: ResultGraded, Intent: intent}, nil
}

// ParseGradePayload splits a grade message body into its numeric first line
// and the verbatim comment that follows.
func ParseGradePayload(body string) (float64, string, error) {
	body = strings.TrimLeft(body, "\r\n")
	first := body
	var rest string
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		first, rest = body[:i], body[i+1:]
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed grade payload %q", strings.TrimSpace(first))
	}
	return points, strings.TrimRight(rest, "\r\n"), nil
}
