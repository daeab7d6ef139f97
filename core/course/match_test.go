package course_test

import (
	"strings"
	"testing"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	testutil "github.com/trezcool/alama/tests"
)

func TestCourse_MatchAssignments(t *testing.T) {
	c := testutil.LoadCourse(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "exact", text: "Assignment 1", want: []string{"Assignment 1"}},
		{name: "case-insensitive", text: "aSSiGnMent 1", want: []string{"Assignment 1"}},
		{name: "embedded in chatter", text: "here is my assignment 1, sorry it's late", want: []string{"Assignment 1"}},
		{name: "tokens in order with gaps", text: "assignment number 2", want: []string{"Assignment 2"}},
		{name: "no match", text: "final exam", want: nil},
		{name: "missing number token", text: "assignment", want: nil},
		{
			name: "several assignments named",
			text: "assignment 1 and assignment 2",
			want: []string{"Assignment 1", "Assignment 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range c.MatchAssignments(tt.text) {
				got = append(got, a.Name)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("MatchAssignments(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MatchAssignments(%q) = %v, want %v", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestCourse_MatchPeople(t *testing.T) {
	c := testutil.LoadCourse(t)

	tests := []struct {
		name     string
		text     string
		want     []string
		wantRest string
	}{
		{name: "full name", text: "Bilbo Baggins", want: []string{"Bilbo Baggins"}, wantRest: ""},
		{name: "rest preserved", text: "bilbo baggins assignment 1", want: []string{"Bilbo Baggins"}, wantRest: " assignment 1"},
		{name: "surname alone matches nobody", text: "Baggins", want: nil},
		{name: "both hobbits named is ambiguous", text: "bilbo and frodo baggins", want: []string{"Bilbo Baggins", "Frodo Baggins"}},
		{name: "single-token name", text: "grades for gandalf please", want: []string{"Gandalf"}, wantRest: " please"},
		{name: "nobody", text: "smeagol", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := c.MatchPeople(tt.text)
			var got []string
			for _, m := range matches {
				got = append(got, m.Person.Name)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("MatchPeople(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MatchPeople(%q) = %v, want %v", tt.text, got, tt.want)
				}
			}
			if len(matches) == 1 && matches[0].Rest != tt.wantRest {
				t.Errorf("Rest = %q, want %q", matches[0].Rest, tt.wantRest)
			}
		})
	}
}

func TestCourse_MatchPeople_accentInsensitive(t *testing.T) {
	conf := `[course]
name: C
students: Zoë Müller

[Zoë Müller]
emails: zm@test.example.org
`
	c, err := course.Load(strings.NewReader(conf), core.NopLogger())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := c.MatchPeople("grades for zoe muller"); len(got) != 1 {
		t.Errorf("MatchPeople() = %v, want the accented name matched", got)
	}
}

func TestCourse_FindByEmail(t *testing.T) {
	c := testutil.LoadCourse(t)
	if got := c.FindByEmail("bb@shire.org"); len(got) != 1 || got[0].Name != "Bilbo Baggins" {
		t.Errorf("FindByEmail() = %v, want Bilbo Baggins", got)
	}
	if got := c.FindByEmail("nobody@shire.org"); got != nil {
		t.Errorf("FindByEmail() = %v, want nil", got)
	}
}
