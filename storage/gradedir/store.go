// Package gradedir implements the grade Repository over a plain directory
// tree: one directory per person, one per assignment underneath, holding a
// "grade" record file, optional "late"/"notified" markers and an archive of
// submitted messages. The tree is the single source of truth and can be
// rescanned at any time.
package gradedir

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/grading"
)

const (
	gradeFile    = "grade"
	lateFile     = "late"
	notifiedFile = "notified"
	mailDir      = "mail"
)

type Store struct {
	basedir string
	course  *course.Course
	logger  core.Logger
}

var _ grading.Repository = (*Store)(nil)

func NewStore(basedir string, c *course.Course, logger core.Logger) *Store {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Store{basedir: basedir, course: c, logger: logger}
}

// fsName maps a display name to its directory name: spaces become
// underscores and shell-hostile characters are dropped.
func fsName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '\'', '"':
			return -1
		}
		return r
	}, name)
}

func (s *Store) recordDir(student, assignment string) string {
	return filepath.Join(s.basedir, fsName(student), fsName(assignment))
}

func (s *Store) ReadGrade(student, assignment string) (*grading.Grade, error) {
	dir := s.recordDir(student, assignment)
	path := filepath.Join(dir, gradeFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil // ungraded
	}
	if err != nil {
		return nil, core.NewStoreError(path, "reading grade: %v", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	first, err := r.ReadString('\n')
	if err != nil && first == "" {
		return nil, core.NewStoreError(path, "unparsable grade: empty record")
	}
	points, perr := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if perr != nil {
		return nil, core.NewStoreError(path, "unparsable grade %q", strings.TrimSpace(first))
	}

	comment, err := io.ReadAll(r)
	if err != nil {
		return nil, core.NewStoreError(path, "reading grade: %v", err)
	}

	g := &grading.Grade{
		Student:    student,
		Assignment: assignment,
		Points:     points,
		Comment:    strings.TrimRight(string(comment), "\n"),
	}
	if _, err := os.Stat(filepath.Join(dir, lateFile)); err == nil {
		g.Late = true
	}
	if nfi, err := os.Stat(filepath.Join(dir, notifiedFile)); err == nil {
		if gfi, err := os.Stat(path); err == nil {
			g.Notified = !nfi.ModTime().Before(gfi.ModTime())
		}
	}
	return g, nil
}

func (s *Store) WriteGrade(g grading.Grade) error {
	dir := s.recordDir(g.Student, g.Assignment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.NewStoreError(dir, "creating record dir: %v", err)
	}
	content := strconv.FormatFloat(g.Points, 'g', -1, 64) + "\n"
	if g.Comment != "" {
		content += g.Comment + "\n"
	}
	path := filepath.Join(dir, gradeFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return core.NewStoreError(path, "writing grade: %v", err)
	}
	return nil
}

// EnumerateGrades walks the roster in declaration order, not the directory
// in filesystem order; a record that fails to parse is logged and skipped so
// one bad file never aborts a tabulation pass.
func (s *Store) EnumerateGrades(personFilter, assignmentFilter func(string) bool) ([]grading.Grade, error) {
	var out []grading.Grade
	for _, p := range s.course.People {
		if personFilter != nil && !personFilter(p.Name) {
			continue
		}
		for _, a := range s.course.Assignments {
			if assignmentFilter != nil && !assignmentFilter(a.Name) {
				continue
			}
			g, err := s.ReadGrade(p.Name, a.Name)
			if err != nil {
				s.logger.Warn(fmt.Sprintf("skipping record %s/%s: %v", p.Name, a.Name, err))
				continue
			}
			if g != nil {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (s *Store) SetLate(student, assignment string) error {
	return s.touch(student, assignment, lateFile)
}

func (s *Store) SetNotified(student, assignment string) error {
	return s.touch(student, assignment, notifiedFile)
}

func (s *Store) touch(student, assignment, name string) error {
	dir := s.recordDir(student, assignment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.NewStoreError(dir, "creating record dir: %v", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return core.NewStoreError(path, "touching marker: %v", err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing marker")
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

func (s *Store) GradeTime(student, assignment string) (time.Time, error) {
	fi, err := os.Stat(filepath.Join(s.recordDir(student, assignment), gradeFile))
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "stating grade")
	}
	return fi.ModTime(), nil
}

// Initialize stubs out the directory tree for every (person, assignment)
// pair in the roster.
func (s *Store) Initialize() error {
	for _, p := range s.course.People {
		for _, a := range s.course.Assignments {
			dir := s.recordDir(p.Name, a.Name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return core.NewStoreError(dir, "initializing: %v", err)
			}
			s.logger.Debug("created " + dir)
		}
	}
	return nil
}
