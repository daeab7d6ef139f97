package mailpipe

import (
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"github.com/trezcool/alama/core"
)

// Pipeline processes a batch of inbound messages sequentially. Each message
// is parsed, classified and dispatched on its own; a failure is logged as a
// one-line diagnostic (and optionally answered) without stopping the batch.
type Pipeline struct {
	classifier *Classifier
	dispatcher *Dispatcher
	mailSvc    core.EmailService
	logger     core.Logger
	respond    bool
}

func NewPipeline(cl *Classifier, d *Dispatcher, mailSvc core.EmailService, logger core.Logger, respond bool) *Pipeline {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Pipeline{classifier: cl, dispatcher: d, mailSvc: mailSvc, logger: logger, respond: respond}
}

// Process handles one raw message. Unclassified mail is skipped silently;
// classification and dispatch failures are diagnosed and, when auto-response
// is on, explained to the sender.
func (p *Pipeline) Process(r io.Reader) error {
	msg, err := ParseMessage(r)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("skipping unreadable message: %v", err))
		return err
	}

	intent, err := p.classifier.Classify(msg)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("skipping message from %s: %v", msg.Sender, err))
		p.explain(msg, err)
		return err
	}
	if intent == nil {
		p.logger.Debug(fmt.Sprintf("ignoring untagged message from %s", msg.Sender))
		return nil
	}

	res, err := p.dispatcher.Dispatch(intent)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("skipping %s from %s: %v", intent.Tag, msg.Sender, err))
		p.explain(msg, err)
		return err
	}
	p.answer(res)
	return nil
}

// ProcessAll drains a batch, returning the count of messages that produced
// an effect or a response.
func (p *Pipeline) ProcessAll(readers []io.Reader) int {
	var handled int
	for _, r := range readers {
		if err := p.Process(r); err == nil {
			handled++
		}
	}
	return handled
}

func (p *Pipeline) answer(res *Result) {
	if !p.respond || p.mailSvc == nil {
		return
	}
	intent := res.Intent
	var body string
	switch res.Kind {
	case ResultReceipt:
		body = fmt.Sprintf("Your submission for %s has been received.", intent.Assignment.Name)
		if res.Late {
			body += "\nIt arrived after the due date and is marked late."
		}
	case ResultRecords:
		var b strings.Builder
		fmt.Fprintf(&b, "Grades for %s:\n", intent.Student.Name)
		for _, rec := range res.Records {
			if rec.Grade == nil {
				fmt.Fprintf(&b, "  %s: not graded yet\n", rec.Assignment.Name)
				continue
			}
			fmt.Fprintf(&b, "  %s: %s/%s\n", rec.Assignment.Name,
				formatPoints(rec.Grade.Points), formatPoints(rec.Assignment.Points))
			if rec.Grade.Comment != "" {
				fmt.Fprintf(&b, "    %s\n", rec.Grade.Comment)
			}
		}
		body = strings.TrimRight(b.String(), "\n")
	case ResultTable:
		var b strings.Builder
		fmt.Fprintf(&b, "Totals for %s:\n", p.classifier.course.Name)
		for _, t := range res.Totals {
			fmt.Fprintf(&b, "  %s\t%.2f\n", t.Person.Name, t.Total)
		}
		body = strings.TrimRight(b.String(), "\n")
	case ResultGraded:
		body = fmt.Sprintf("Recorded grade for %s on %s.",
			intent.Student.Name, intent.Assignment.Name)
	}
	p.sendTo(intent.Message.Sender, intent.Person.Alias(), "Re: "+intent.Message.Subject, body)
}

func (p *Pipeline) explain(msg *InboundMessage, cause error) {
	if !p.respond || p.mailSvc == nil {
		return
	}
	var alias string
	if core.IsDispatchError(cause) || core.IsClassifyError(cause) {
		if people := p.classifier.course.FindByEmail(msg.Sender); len(people) == 1 {
			alias = people[0].Alias()
		}
	}
	body := fmt.Sprintf("Your message %q could not be processed:\n%v", msg.Subject, cause)
	p.sendTo(msg.Sender, alias, "Re: "+msg.Subject, body)
}

// sendTo wraps the body in the sender's salutation and the robot's
// signature before mailing it back.
func (p *Pipeline) sendTo(addr, alias, subject, body string) {
	greeting := "Hello"
	if alias != "" {
		greeting = alias
	}
	robotAlias := p.classifier.course.Name + " robot"
	if p.classifier.course.Robot != nil {
		robotAlias = p.classifier.course.Robot.Alias()
	}
	text := fmt.Sprintf("%s,\n\n%s\n\nYours,\n%s", greeting, body, robotAlias)

	out := &core.EmailMessage{
		To:      []mail.Address{{Address: addr}},
		Subject: subject,
		BodyStr: text,
	}
	p.mailSvc.SendMessages(out)
}

// NotifyStudents mails each student a summary of the grades they have not
// been told about yet and marks those grades notified. With old set,
// already-reported grades are included in the summary as well. Students with
// nothing to report, or with no email address, are skipped. Returns the
// number of messages sent.
func (p *Pipeline) NotifyStudents(old bool) (int, error) {
	if p.mailSvc == nil {
		return 0, nil
	}
	c := p.classifier.course
	repo := p.dispatcher.repo
	var sent int
	for _, s := range c.Students() {
		if len(s.Emails) == 0 {
			p.logger.Warn(fmt.Sprintf("no email address for %s, skipping", s.Name))
			continue
		}

		var grades, comments strings.Builder
		var pending []string
		for i := range c.Assignments {
			a := &c.Assignments[i]
			g, err := repo.ReadGrade(s.Name, a.Name)
			if err != nil {
				return sent, err
			}
			if g == nil || (g.Notified && !old) {
				continue
			}
			fmt.Fprintf(&grades, "  * %s:\t%s out of %s available points.\n",
				a.Name, formatPoints(g.Points), formatPoints(a.Points))
			if g.Comment != "" {
				fmt.Fprintf(&comments, "%s: %s\n", a.Name, g.Comment)
			}
			if !g.Notified {
				pending = append(pending, a.Name)
			}
		}
		if grades.Len() == 0 {
			continue
		}

		body := "Grades:\n" + strings.TrimRight(grades.String(), "\n")
		if comments.Len() > 0 {
			body += "\n\nComments:\n" + strings.TrimRight(comments.String(), "\n")
		}
		p.sendTo(s.Emails[0], s.Alias(), "Your grades", body)
		sent++
		for _, name := range pending {
			if err := repo.SetNotified(s.Name, name); err != nil {
				return sent, err
			}
		}
	}
	return sent, nil
}

func formatPoints(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
