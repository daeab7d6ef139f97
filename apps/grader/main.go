package main

import (
	"log"
	"os"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/grading"
	emailsvc "github.com/trezcool/alama/services/email"
	logsvc "github.com/trezcool/alama/services/logger"
	"github.com/trezcool/alama/storage/gradedir"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "GRADER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	} else {
		logger = core.NewStdLogger(std)
	}

	crs, err := course.LoadFile(core.Conf.CourseConf, logger)
	errAndDie(std, err)

	store := gradedir.NewStore(core.Conf.BaseDir, crs, logger)

	var mailSvc core.EmailService
	if core.Conf.SendgridApiKey != "" {
		mailSvc = emailsvc.NewSendgridService(logger)
	} else {
		mailSvc = emailsvc.NewConsoleService()
	}

	cli := commandLine{
		logger:  logger,
		course:  crs,
		store:   store,
		svc:     grading.NewService(crs, store, nil, logger),
		mailSvc: mailSvc,
		out:     os.Stdout,
		in:      os.Stdin,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
