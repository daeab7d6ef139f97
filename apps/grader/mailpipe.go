package main

import (
	"io"
	"os"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/mailpipe"
)

// mailpipe feeds one or more raw messages through the pipeline. With no file
// arguments a single message is read from stdin, which is how a mail
// delivery agent invokes the command.
func (cli *commandLine) mailpipe(files []string, respond bool) error {
	classifier := mailpipe.NewClassifier(cli.course)
	dispatcher := mailpipe.NewDispatcher(cli.course, cli.svc, cli.store, cli.logger, core.Conf.MaxLate)
	pipeline := mailpipe.NewPipeline(classifier, dispatcher, cli.mailSvc, cli.logger, respond)

	if len(files) == 0 {
		return pipeline.Process(cli.in)
	}

	readers := make([]io.Reader, 0, len(files))
	toClose := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range toClose {
			_ = f.Close()
		}
	}()
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		toClose = append(toClose, f)
		readers = append(readers, f)
	}
	pipeline.ProcessAll(readers)
	return nil
}
