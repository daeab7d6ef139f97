package course

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/trezcool/alama/core"
)

// course.conf date layouts, most to least specific (W3C profile of ISO 8601).
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// roleLists maps the [course] section keys to the role their members get.
// Order matters: people keep the declaration order of the first list that
// names them.
var roleLists = []struct{ key, role string }{
	{"professors", RoleProfessor},
	{"assistants", RoleAssistant},
	{"students", RoleStudent},
}

// LoadFile loads a Course from a course.conf path.
func LoadFile(path string, logger core.Logger) (*Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewConfigError("opening %s: %v", path, err)
	}
	defer f.Close()
	return Load(f, logger)
}

// Load parses a course.conf stream into a Course. Any malformed input is a
// ConfigError and no partial Course is returned; mismatched weight divisors
// are only warned about through logger.
func Load(r io.Reader, logger core.Logger) (*Course, error) {
	v := viper.New()
	v.SetConfigType("ini")
	if err := v.ReadConfig(r); err != nil {
		return nil, core.NewConfigError("reading course config: %v", err)
	}

	c := &Course{Name: core.CleanString(v.GetString("course.name"))}
	if c.Name == "" {
		return nil, core.NewConfigError("missing course name")
	}

	for _, name := range core.SplitList(v.GetString("course.assignments")) {
		a, err := loadAssignment(v, name)
		if err != nil {
			return nil, err
		}
		c.Assignments = append(c.Assignments, a)
	}

	seen := make(map[string]int) // name -> index into c.People
	for _, rl := range roleLists {
		for _, name := range core.SplitList(v.GetString("course." + rl.key)) {
			if i, ok := seen[name]; ok {
				c.People[i].Roles = append(c.People[i].Roles, rl.role)
				continue
			}
			p, err := loadPerson(v, name)
			if err != nil {
				return nil, err
			}
			p.Roles = []string{rl.role}
			seen[name] = len(c.People)
			c.People = append(c.People, p)
		}
	}

	if robot := core.CleanString(v.GetString("course.robot")); robot != "" {
		if i, ok := seen[robot]; ok {
			c.People[i].Roles = append(c.People[i].Roles, RoleRobot)
		} else {
			p, err := loadPerson(v, robot)
			if err != nil {
				return nil, err
			}
			p.Roles = []string{RoleRobot}
			seen[robot] = len(c.People)
			c.People = append(c.People, p)
		}
		c.Robot = &c.People[seen[robot]]
	}

	checkWeightGroups(c, logger)
	return c, nil
}

// hasSection reports whether the config has a [name] section. Viper only
// registers leaf keys, so we look for keys under the section prefix.
func hasSection(v *viper.Viper, name string) bool {
	prefix := strings.ToLower(name) + "."
	for _, k := range v.AllKeys() {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func loadAssignment(v *viper.Viper, name string) (Assignment, error) {
	if !hasSection(v, name) {
		return Assignment{}, core.NewConfigError("unknown assignment %q: no detail section", name)
	}
	a := Assignment{Name: name, Points: v.GetFloat64(name + ".points")}

	expr := core.CleanString(v.GetString(name + ".weight"))
	if err := core.Validate.Var(expr, "required,weightexpr"); err != nil {
		return Assignment{}, core.NewConfigError("malformed weight %q for %q", expr, name)
	}
	w, err := ParseWeight(expr)
	if err != nil {
		return Assignment{}, err
	}
	a.Weight = w

	if due := core.CleanString(v.GetString(name + ".due")); due != "" {
		t, err := parseDue(due)
		if err != nil {
			return Assignment{}, core.NewConfigError("invalid due date %q for %q", due, name)
		}
		a.Due = t
	}
	a.Submittable = parseFlag(v.GetString(name + ".submittable"))

	if err := validateStruct(a, name); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func loadPerson(v *viper.Viper, name string) (Person, error) {
	if !hasSection(v, name) {
		return Person{}, core.NewConfigError("unknown person %q: no detail section", name)
	}
	p := Person{
		Name:     name,
		Nickname: core.CleanString(v.GetString(name + ".nickname")),
		Emails:   core.SplitList(v.GetString(name + ".emails")),
		PGPKey:   core.CleanString(v.GetString(name + ".pgp-key")),
	}
	if err := validateStruct(p, name); err != nil {
		return Person{}, err
	}
	return p, nil
}

func validateStruct(s interface{}, section string) error {
	err := core.Validate.Struct(s)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		msg := fmt.Sprintf("section %q:", section)
		for _, fe := range verrs {
			msg += fmt.Sprintf(" %s %s;", fe.Field(), fe.Translate(core.Translator))
		}
		return core.NewConfigError("%s", msg)
	}
	return core.NewConfigError("section %q: %v", section, err)
}

// parseFlag reads the conf format's yes/no switches; anything else is no.
func parseFlag(s string) bool {
	switch core.CleanString(s, true /* lower */) {
	case "yes", "y", "true", "on", "1":
		return true
	}
	return false
}

func parseDue(s string) (time.Time, error) {
	var err error
	for _, layout := range dueLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// checkWeightGroups warns when a shared divisor does not equal the number of
// assignments it normalizes. Advisory only: a mismatch skews totals but the
// operator may be mid-edit, so the run goes on.
func checkWeightGroups(c *Course, logger core.Logger) {
	if logger == nil {
		return
	}
	groups := make(map[float64]int)
	for _, a := range c.Assignments {
		if a.Weight.Grouped {
			groups[a.Weight.Den]++
		}
	}
	for den, n := range groups {
		if int(den) != n {
			logger.Warn(fmt.Sprintf(
				"weight divisor %g normalizes %d assignments, not %g", den, n, den))
		}
	}
}
