package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/storage/gradedir"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	logger  core.Logger
	course  *course.Course
	store   *gradedir.Store
	svc     *grading.Service
	mailSvc core.EmailService
	out     io.Writer
	in      io.Reader
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  initialize                 - create the grade directory tree for the roster")
	fmt.Println("  tabulate [-stats] [-naive] - print the grade table")
	fmt.Println("  mailpipe [-respond] [FILE...] - process tagged messages (stdin when no FILE)")
	fmt.Println("  email [-old]               - mail each student their unreported grades")
	fmt.Println("  todo                       - list submissions newer than their grade")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tabulateCmd := flag.NewFlagSet("tabulate", flag.ExitOnError)
	tabulateStats := tabulateCmd.Bool("stats", false, "Append mean and standard deviation rows.")
	tabulateNaive := tabulateCmd.Bool("naive", false, "Use the built-in statistics fallback.")

	mailpipeCmd := flag.NewFlagSet("mailpipe", flag.ExitOnError)
	mailpipeRespond := mailpipeCmd.Bool("respond", core.Conf.AutoRespond, "Answer each processed message as the course robot.")

	emailCmd := flag.NewFlagSet("email", flag.ExitOnError)
	emailOld := emailCmd.Bool("old", false, "Include grades that were already reported.")

	switch args[1] {
	case "initialize":
		return cli.store.Initialize()
	case "tabulate":
		if err := tabulateCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.tabulate(*tabulateStats, *tabulateNaive)
	case "mailpipe":
		if err := mailpipeCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.mailpipe(mailpipeCmd.Args(), *mailpipeRespond)
	case "email":
		if err := emailCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.email(*emailOld)
	case "todo":
		return cli.todo()
	default:
		cli.printUsage()
		return errHelp
	}
}
