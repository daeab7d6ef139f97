package main

import (
	"fmt"
)

func (cli *commandLine) todo() error {
	items, err := cli.svc.Todo()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(cli.out, "nothing to grade")
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(cli.out, "%s\t%s\t%s\n",
			it.Student, it.Assignment, it.SubmittedAt.Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}
	return nil
}
