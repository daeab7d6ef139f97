package grading

import (
	"errors"
	"fmt"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
)

var (
	// errors
	ErrUnknownPerson     = errors.New("person not found in roster")
	ErrUnknownAssignment = errors.New("assignment not found in roster")
)

type (
	// Repository is the grade store. The canonical implementation is the
	// directory tree under storage/gradedir; it is rescannable at any time
	// as the single source of truth.
	Repository interface {
		// ReadGrade returns (nil, nil) when the record does not exist;
		// ungraded is never an error.
		ReadGrade(student, assignment string) (*Grade, error)
		// WriteGrade creates the enclosing directories as needed and
		// overwrites any existing record; last write wins.
		WriteGrade(g Grade) error
		// EnumerateGrades yields records ordered by roster declaration
		// order (person, then assignment), never storage order. A record
		// that fails to parse is skipped, not fatal. Nil filters match
		// everything.
		EnumerateGrades(personFilter, assignmentFilter func(name string) bool) ([]Grade, error)

		// submission archive
		ArchiveSubmission(student, assignment string, msg []byte) (string, error)
		SubmissionTime(student, assignment string) (time.Time, error)
		GradeTime(student, assignment string) (time.Time, error)

		// markers
		SetLate(student, assignment string) error
		SetNotified(student, assignment string) error
	}

	// Service is the aggregation engine: per-person weighted totals and
	// per-assignment statistics over whatever the Repository holds.
	Service struct {
		course *course.Course
		repo   Repository
		stats  Statistics
		logger core.Logger
	}
)

// NewService wires the aggregation engine. A nil stats backend selects the
// gonum-backed default.
func NewService(c *course.Course, repo Repository, stats Statistics, logger core.Logger) *Service {
	if stats == nil {
		stats = GonumStats{}
	}
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Service{course: c, repo: repo, stats: stats, logger: logger}
}

// AssignmentStats summarizes the recorded grades for one assignment.
func (svc *Service) AssignmentStats(assignment string) (Stats, error) {
	if svc.course.Assignment(assignment) == nil {
		return Stats{}, ErrUnknownAssignment
	}
	grades, err := svc.repo.EnumerateGrades(nil, matchName(assignment))
	if err != nil {
		return Stats{}, err
	}
	xs := make([]float64, 0, len(grades))
	for _, g := range grades {
		xs = append(xs, g.Points)
	}
	return computeStats(svc.stats, xs), nil
}

// PersonTotal computes the weighted total for one person. Assignments are
// grouped by shared weight divisor; each group is averaged over its graded
// members only, and group averages are summed. Ungraded assignments never
// count as zero.
func (svc *Service) PersonTotal(person string) (float64, error) {
	if svc.course.Person(person) == nil {
		return 0, ErrUnknownPerson
	}
	grades, err := svc.repo.EnumerateGrades(matchName(person), nil)
	if err != nil {
		return 0, err
	}
	graded := make(map[string]*Grade, len(grades))
	for i := range grades {
		graded[grades[i].Assignment] = &grades[i]
	}

	type group struct {
		sum float64
		n   int
	}
	groups := make(map[string]*group)
	for _, a := range svc.course.Assignments {
		g, ok := graded[a.Name]
		if !ok {
			continue
		}
		key := "assignment:" + a.Name // ungrouped: a group of one
		if a.Weight.Grouped {
			key = fmt.Sprintf("divisor:%g", a.Weight.Den)
		}
		grp := groups[key]
		if grp == nil {
			grp = &group{}
			groups[key] = grp
		}
		grp.sum += g.Points / a.Points * a.Weight.Num
		grp.n++
	}

	var total float64
	for _, grp := range groups {
		total += grp.sum / float64(grp.n)
	}
	return total, nil
}

// Todo lists submissions still awaiting a grade, in roster order.
func (svc *Service) Todo() ([]TodoItem, error) {
	var items []TodoItem
	for _, p := range svc.course.People {
		if !p.HasRole(course.RoleStudent) {
			continue
		}
		for _, a := range svc.course.Assignments {
			subTime, err := svc.repo.SubmissionTime(p.Name, a.Name)
			if err != nil {
				return nil, err
			}
			if subTime.IsZero() {
				continue
			}
			gradeTime, err := svc.repo.GradeTime(p.Name, a.Name)
			if err != nil {
				return nil, err
			}
			if gradeTime.IsZero() || subTime.After(gradeTime) {
				items = append(items, TodoItem{
					Student:     p.Name,
					Assignment:  a.Name,
					SubmittedAt: subTime,
				})
			}
		}
	}
	return items, nil
}

func matchName(name string) func(string) bool {
	return func(other string) bool { return other == name }
}
