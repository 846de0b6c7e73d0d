// Package advisor answers questions about a run report with Gemini models.
package advisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/endgame/renderer"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Advisor handles the chat session about one report.
type Advisor struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
}

// New creates an Advisor for report, with a planner, an analyst reading
// the report and a researcher. Output goes to w, follow-up questions are
// read from r.
func New(w io.Writer, r io.Reader, report *renderer.Report) *Advisor {
	experts := []*Expert{NewAnalyst(report), NewResearcher()}
	return &Advisor{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newPlanner(experts...),
	}
}

// WithLogger logs the questions experts answer to log.
func (a *Advisor) WithLogger(log logrus.FieldLogger) *Advisor {
	a.Facilitator.Log = log
	for _, e := range a.Experts {
		e.Log = log
	}
	return a
}

// Start creates a chat per expert.
func (a *Advisor) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "ask> "

// Ask answers a single question.
func (a *Advisor) Ask(ctx context.Context, client *genai.Client, question string) (string, error) {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return "", err
		}
	}
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return text(content), nil
}

// Run answers the questions, then reads more from the input until "bye"
// or its end. print renders each answer.
func (a *Advisor) Run(ctx context.Context, client *genai.Client, print func(string), questions ...string) error {
	fmt.Fprintln(a.w, "Ask about this run. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(questions) > 0 {
			input, questions = strings.TrimSpace(questions[0]), questions[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(input) == "bye" {
			return nil
		}
		answer, err := a.Ask(ctx, client, input)
		if err != nil {
			return err
		}
		print(answer)
	}
}

// text joins the text parts of a response.
func text(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
