package main

import (
	"github.com/trezcool/alama/core/grading"
)

func (cli *commandLine) tabulate(withStats, naive bool) error {
	svc := cli.svc
	if naive {
		svc = grading.NewService(cli.course, cli.store, grading.NaiveStats{}, cli.logger)
	}
	return svc.Tabulate(cli.out, grading.TabulateOptions{Statistics: withStats})
}
