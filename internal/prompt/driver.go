package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted a prompt (e.g., Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// Question carries what every prompt for a form control shares.
type Question struct {
	Field    string
	Hint     string
	Required bool
}

// TextQuestion asks for free text to type into a control.
type TextQuestion struct {
	Question
	Value string
}

// ToggleQuestion asks whether a checkbox should end up checked.
type ToggleQuestion struct {
	Question
	Checked bool
}

// ChoiceQuestion asks for one of a radio group's or select's choices.
// Selected is the currently chosen index, or -1.
type ChoiceQuestion struct {
	Question
	Choices  []string
	Selected int
}

// Driver abstracts the terminal so the fill flow can be tested without one.
type Driver interface {
	Text(ctx context.Context, q TextQuestion) (string, error)
	Toggle(ctx context.Context, q ToggleQuestion) (bool, error)
	Choose(ctx context.Context, q ChoiceQuestion) (int, error)
	Notify(ctx context.Context, msg string) error
}

// SurveyDriver prompts on a terminal. Nil streams fall back to the process's
// standard streams.
type SurveyDriver struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err io.Writer
}

// NewSurveyDriver returns a driver bound to the process terminal.
func NewSurveyDriver() *SurveyDriver {
	return &SurveyDriver{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

func (d *SurveyDriver) Text(ctx context.Context, q TextQuestion) (string, error) {
	var out string
	err := d.ask(ctx, &survey.Input{Message: q.Field, Help: q.Hint, Default: q.Value}, &out, q.Required)
	return out, err
}

func (d *SurveyDriver) Toggle(ctx context.Context, q ToggleQuestion) (bool, error) {
	var out bool
	err := d.ask(ctx, &survey.Confirm{Message: q.Field, Help: q.Hint, Default: q.Checked}, &out, false)
	return out, err
}

func (d *SurveyDriver) Choose(ctx context.Context, q ChoiceQuestion) (int, error) {
	if len(q.Choices) == 0 {
		return -1, nil
	}
	sel := &survey.Select{Message: q.Field, Help: q.Hint, Options: q.Choices}
	if q.Selected >= 0 && q.Selected < len(q.Choices) {
		sel.Default = q.Choices[q.Selected]
	}
	// survey writes the chosen index when the target is an int.
	var out int
	if err := d.ask(ctx, sel, &out, q.Required); err != nil {
		return -1, err
	}
	return out, nil
}

func (d *SurveyDriver) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if d.Out != nil {
		w = d.Out
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func (d *SurveyDriver) ask(ctx context.Context, p survey.Prompt, out any, required bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var opts []survey.AskOpt
	if d.In != nil && d.Out != nil {
		errw := d.Err
		if errw == nil {
			errw = os.Stderr
		}
		opts = append(opts, survey.WithStdio(d.In, d.Out, errw))
	}
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(p, out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}
