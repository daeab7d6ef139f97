package grading

import (
	"fmt"
	"io"
	"strconv"
)

type TabulateOptions struct {
	// Statistics adds Mean and Std. Dev. rows below the table.
	Statistics bool
}

// Tabulate writes the tab-separated grade table: one column per assignment
// with at least one recorded grade, one row per student with at least one
// recorded grade, "-" for ungraded cells. A Total column appears once every
// assignment has been graded at least once. Ordering follows the roster, so
// output is deterministic regardless of storage order.
func (svc *Service) Tabulate(w io.Writer, opts TabulateOptions) error {
	grades, err := svc.repo.EnumerateGrades(nil, nil)
	if err != nil {
		return err
	}
	byKey := make(map[string]*Grade, len(grades))
	activeA := make(map[string]bool)
	activeS := make(map[string]bool)
	for i := range grades {
		g := &grades[i]
		byKey[g.Student+"\x00"+g.Assignment] = g
		activeA[g.Assignment] = true
		activeS[g.Student] = true
	}

	var assignments []string
	for _, a := range svc.course.Assignments {
		if activeA[a.Name] {
			assignments = append(assignments, a.Name)
		}
	}
	var students []string
	for _, p := range svc.course.People {
		if activeS[p.Name] {
			students = append(students, p.Name)
		}
	}
	withTotal := len(assignments) == len(svc.course.Assignments)

	// header
	if _, err := fmt.Fprint(w, "Student"); err != nil {
		return err
	}
	for _, a := range assignments {
		fmt.Fprintf(w, "\t%s", a)
	}
	if withTotal {
		fmt.Fprint(w, "\tTotal")
	}
	fmt.Fprintln(w)

	// rows
	totals := make([]float64, 0, len(students))
	for _, s := range students {
		fmt.Fprint(w, s)
		for _, a := range assignments {
			if g, ok := byKey[s+"\x00"+a]; ok {
				fmt.Fprintf(w, "\t%s", formatPoints(g.Points))
			} else {
				fmt.Fprint(w, "\t-")
			}
		}
		if withTotal {
			total, err := svc.PersonTotal(s)
			if err != nil {
				return err
			}
			totals = append(totals, total)
			fmt.Fprintf(w, "\t%s", formatPoints(total))
		}
		fmt.Fprintln(w)
	}

	if !opts.Statistics {
		return nil
	}

	fmt.Fprintln(w, "--")
	stats := make([]Stats, 0, len(assignments))
	for _, a := range assignments {
		st, err := svc.AssignmentStats(a)
		if err != nil {
			return err
		}
		stats = append(stats, st)
	}
	totalStats := computeStats(svc.stats, totals)
	for _, row := range []struct {
		label string
		pick  func(Stats) float64
	}{
		{"Mean", func(s Stats) float64 { return s.Mean }},
		{"Std. Dev.", func(s Stats) float64 { return s.StdDev }},
	} {
		fmt.Fprint(w, row.label)
		for _, st := range stats {
			fmt.Fprintf(w, "\t%.2f", row.pick(st))
		}
		if withTotal {
			fmt.Fprintf(w, "\t%.2f", row.pick(totalStats))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
