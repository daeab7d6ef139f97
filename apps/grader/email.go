package main

import (
	"fmt"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/mailpipe"
)

// email mails every student a summary of their grades that have not been
// reported yet, marking each one notified. With old set, grades reported
// before are included too.
func (cli *commandLine) email(old bool) error {
	classifier := mailpipe.NewClassifier(cli.course)
	dispatcher := mailpipe.NewDispatcher(cli.course, cli.svc, cli.store, cli.logger, core.Conf.MaxLate)
	pipeline := mailpipe.NewPipeline(classifier, dispatcher, cli.mailSvc, cli.logger, true)

	sent, err := pipeline.NotifyStudents(old)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "sent %d message(s)\n", sent)
	return nil
}
