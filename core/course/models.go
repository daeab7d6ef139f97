// Package course implements the roster domain: the people, assignments and
// robot identity configured for one grading context, loaded once per run and
// immutable afterwards.
package course

import (
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/alama/core"
)

// Roles
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAssistant = "assistant"
	RoleRobot     = "robot"
)

var StaffRoles = []string{RoleProfessor, RoleAssistant}

type Person struct {
	Name     string   `conf:"name" validate:"required"`
	Nickname string   `conf:"nickname"`
	Emails   []string `conf:"emails" validate:"omitempty,dive,email"`
	PGPKey   string   `conf:"pgp-key"`
	Roles    []string `conf:"-"`
}

// Alias returns a good name for direct address.
func (p *Person) Alias() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}

func (p *Person) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Person) IsStudent() bool { return p.HasRole(RoleStudent) }
func (p *Person) IsRobot() bool   { return p.HasRole(RoleRobot) }

func (p *Person) IsStaff() bool {
	return p.HasRole(RoleProfessor) || p.HasRole(RoleAssistant)
}

// OwnsEmail reports whether addr is one of the person's configured
// addresses; the match is exact up to case.
func (p *Person) OwnsEmail(addr string) bool {
	addr = core.CleanString(addr, true /* lower */)
	for _, e := range p.Emails {
		if strings.ToLower(e) == addr {
			return true
		}
	}
	return false
}

// Weight is a parsed weight expression "num[/den]". A divided weight places
// the assignment in the group of siblings sharing the same divisor; the
// group is averaged before being summed into a final total.
type Weight struct {
	Num     float64
	Den     float64
	Grouped bool
}

// Value is the effective weight of a single assignment.
func (w Weight) Value() float64 {
	if w.Grouped {
		return w.Num / w.Den
	}
	return w.Num
}

func ParseWeight(expr string) (Weight, error) {
	terms := strings.SplitN(strings.TrimSpace(expr), "/", 2)
	num, err := strconv.ParseFloat(strings.TrimSpace(terms[0]), 64)
	if err != nil {
		return Weight{}, core.NewConfigError("malformed weight %q", expr)
	}
	if len(terms) == 1 {
		return Weight{Num: num}, nil
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(terms[1]), 64)
	if err != nil || den == 0 {
		return Weight{}, core.NewConfigError("malformed weight %q", expr)
	}
	return Weight{Num: num, Den: den, Grouped: true}, nil
}

type Assignment struct {
	Name        string  `conf:"name" validate:"required"`
	Points      float64 `conf:"points" validate:"gt=0"`
	Weight      Weight  `conf:"weight"`
	Due         time.Time
	Submittable bool `conf:"submittable"`
}

// Course is the configured set of people and assignments, in declaration
// order, plus the robot identity used to originate automated responses.
type Course struct {
	Name        string
	Assignments []Assignment
	People      []Person
	Robot       *Person
}

func (c *Course) Assignment(name string) *Assignment {
	for i := range c.Assignments {
		if c.Assignments[i].Name == name {
			return &c.Assignments[i]
		}
	}
	return nil
}

func (c *Course) Person(name string) *Person {
	for i := range c.People {
		if c.People[i].Name == name {
			return &c.People[i]
		}
	}
	return nil
}

// FindByEmail returns every person owning addr. More than one match means a
// misconfigured roster; the caller decides whether that is fatal.
func (c *Course) FindByEmail(addr string) []*Person {
	var found []*Person
	for i := range c.People {
		if c.People[i].OwnsEmail(addr) {
			found = append(found, &c.People[i])
		}
	}
	return found
}

func (c *Course) PeopleWithRole(role string) []*Person {
	var found []*Person
	for i := range c.People {
		if c.People[i].HasRole(role) {
			found = append(found, &c.People[i])
		}
	}
	return found
}

func (c *Course) Students() []*Person { return c.PeopleWithRole(RoleStudent) }
