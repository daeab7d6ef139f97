package mailpipe

import (
	"regexp"
	"strings"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
)

// Tag is the action requested by a message's bracketed subject tag.
type Tag string

const (
	TagSubmit Tag = "submit"
	TagGet    Tag = "get"
	TagGrade  Tag = "grade"
)

// Intent is what a classified message asks for. Person is always the
// resolved sender. Student and Assignment identify the target record: a get
// with neither set (WholeCourse) asks for the full grade table.
type Intent struct {
	Tag         Tag
	Person      *course.Person // sender
	Student     *course.Person // target, nil for whole-course get
	Assignment  *course.Assignment
	WholeCourse bool
	Body        string
	Message     *InboundMessage
}

var subjectTagRx = regexp.MustCompile(`\[([^\]]*)\]`)

// Classifier resolves inbound messages against a loaded course.
type Classifier struct {
	course *course.Course
}

func NewClassifier(c *course.Course) *Classifier {
	return &Classifier{course: c}
}

// Classify maps a message to an Intent. A message whose subject carries no
// recognized tag is not an error: both returns are nil and the caller moves
// on, since unrelated mail is expected to reach the pipe. Everything after
// the tag is a ClassifyError when it cannot be resolved unambiguously.
func (cl *Classifier) Classify(msg *InboundMessage) (*Intent, error) {
	tag, rest, ok := extractTag(msg.Subject)
	if !ok {
		return nil, nil
	}

	sender, err := cl.resolveSender(msg.Sender)
	if err != nil {
		return nil, err
	}

	intent := &Intent{
		Tag:     tag,
		Person:  sender,
		Body:    msg.Body,
		Message: msg,
	}

	switch tag {
	case TagSubmit:
		err = cl.classifySubmit(intent, rest)
	case TagGet:
		err = cl.classifyGet(intent, rest)
	case TagGrade:
		err = cl.classifyGrade(intent, rest)
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// extractTag finds the last bracketed segment of the subject and strips any
// :-separated routing prefix inside it, so "[phys101:section2:submit]" and
// "[submit]" are equivalent. Taking the last bracket lets mailing-list style
// prefixes like "[Alama] [submit] ..." through. The second return is the
// subject text after the closing bracket.
func extractTag(subject string) (Tag, string, bool) {
	locs := subjectTagRx.FindAllStringSubmatchIndex(subject, -1)
	if locs == nil {
		return "", "", false
	}
	loc := locs[len(locs)-1]
	content := subject[loc[2]:loc[3]]
	rest := subject[loc[1]:]
	if i := strings.LastIndex(content, ":"); i >= 0 {
		content = content[i+1:]
	}
	switch tag := Tag(strings.ToLower(strings.TrimSpace(content))); tag {
	case TagSubmit, TagGet, TagGrade:
		return tag, rest, true
	}
	return "", "", false
}

func (cl *Classifier) resolveSender(addr string) (*course.Person, error) {
	people := cl.course.FindByEmail(addr)
	switch len(people) {
	case 0:
		return nil, core.NewClassifyError("unknown sender " + addr)
	case 1:
		return people[0], nil
	}
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	return nil, core.NewClassifyError("ambiguous address "+addr, names...)
}

func (cl *Classifier) classifySubmit(intent *Intent, rest string) error {
	a, err := cl.oneAssignment(rest)
	if err != nil {
		return err
	}
	intent.Student = intent.Person
	intent.Assignment = a
	return nil
}

func (cl *Classifier) classifyGet(intent *Intent, rest string) error {
	// Students may only ask for their own record; the rest of the subject
	// is ignored for them.
	if intent.Person.IsStudent() && !intent.Person.IsStaff() {
		intent.Student = intent.Person
		return nil
	}
	matches := cl.course.MatchPeople(rest)
	switch len(matches) {
	case 0:
		intent.WholeCourse = true
		return nil
	case 1:
		intent.Student = matches[0].Person
		if strings.TrimSpace(matches[0].Rest) != "" {
			a, err := cl.oneAssignment(matches[0].Rest)
			if err != nil {
				return err
			}
			intent.Assignment = a
		}
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Person.Name
	}
	return core.NewClassifyError("ambiguous target", names...)
}

func (cl *Classifier) classifyGrade(intent *Intent, rest string) error {
	matches := cl.course.MatchPeople(rest)
	if len(matches) != 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Person.Name
		}
		return core.NewClassifyError("ambiguous target", names...)
	}
	a, err := cl.oneAssignment(matches[0].Rest)
	if err != nil {
		return err
	}
	intent.Student = matches[0].Person
	intent.Assignment = a
	return nil
}

func (cl *Classifier) oneAssignment(text string) (*course.Assignment, error) {
	matches := cl.course.MatchAssignments(text)
	if len(matches) != 1 {
		names := make([]string, len(matches))
		for i, a := range matches {
			names[i] = a.Name
		}
		return nil, core.NewClassifyError("ambiguous assignment", names...)
	}
	return matches[0], nil
}
