package communication

import (
	"context"
	"log"
	"time"

	"deskhive.com/deskhive/infrastructure/brain"
)

// Dispatcher fans one customer notification out to LINE and mirrors it
// into the Brain knowledge log. Failures are logged and swallowed; a
// notification never fails the operation that triggered it.
type Dispatcher struct {
	line      *Line
	brain     *brain.Client
	slack     *Slack
	emailFrom string
}

func NewDispatcher(line *Line, brainClient *brain.Client, slackClient *Slack, emailFrom string) *Dispatcher {
	return &Dispatcher{line: line, brain: brainClient, slack: slackClient, emailFrom: emailFrom}
}

// Notify pushes text to the customer's LINE chat and mirrors it. Runs in
// the caller's goroutine but detaches from the request context: the caller
// has already been answered by the time this runs.
func (d *Dispatcher) Notify(lineUserID string, contractID int64, text string, tags ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if d.line != nil {
		if err := d.line.Push(ctx, lineUserID, text); err != nil {
			log.Printf("notify: %v", err)
			d.alert(ctx, "LINE push failed: "+err.Error())
		}
	}

	if d.brain != nil {
		err := d.brain.Log(ctx, brain.LogEntry{
			Source:     "backoffice",
			LineUserID: lineUserID,
			ContractID: contractID,
			Content:    text,
			Tags:       tags,
		})
		if err != nil {
			log.Printf("notify mirror: %v", err)
		}
	}
}

// Go runs Notify on its own goroutine for call sites inside a request.
func (d *Dispatcher) Go(lineUserID string, contractID int64, text string, tags ...string) {
	go d.Notify(lineUserID, contractID, text, tags...)
}

// GoEmail sends a formal notice by email on its own goroutine. The chat
// push covers the conversational side; this covers letters that need a
// paper trail, like the settlement receipt.
func (d *Dispatcher) GoEmail(to, subject, body string) {
	if d.emailFrom == "" || to == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := SendEmail(ctx, &EmailInfo{
			From:    d.emailFrom,
			To:      []string{to},
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			log.Printf("notify email: %v", err)
			d.alert(ctx, "Email send failed: "+err.Error())
		}
	}()
}

func (d *Dispatcher) alert(ctx context.Context, message string) {
	if d.slack == nil {
		return
	}
	if err := d.slack.Error(ctx, message); err != nil {
		log.Printf("slack alert: %v", err)
	}
}
