// Package runner implements the interactive loop that feeds user lines to a
// flow and prints each result. A failed turn prints one notice and the loop
// continues; only exit tokens, end of input or context cancellation end it.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/logging"
)

// Options holds presentation and input handling overrides passed to New.
type Options struct {
	// Greeting is printed once before the first prompt.
	Greeting string
	// Prompt is printed before every read.
	Prompt string
	// Farewell is printed when an exit token is entered.
	Farewell string
	// ExitTokens end the loop; matched case-insensitively.
	ExitTokens []string
	// RejectEmpty re-prompts on blank input instead of running the flow.
	RejectEmpty bool
	// EmptyNotice is printed when blank input is rejected.
	EmptyNotice string
	// ErrorNotice prefixes the single line printed for a failed turn.
	ErrorNotice string
	// ResultPrefix and ResultSuffix decorate every successful result.
	ResultPrefix string
	ResultSuffix string
	// Normalize rewrites accepted input before it reaches the flow.
	Normalize func(string) string
	// MaxLineBytes bounds one input line; longer lines print TooLongNotice
	// and are skipped (0 = unbounded).
	MaxLineBytes int
	// TooLongNotice is printed when a line exceeds MaxLineBytes.
	TooLongNotice string
	// Once stops the loop after the first turn that reached the flow.
	Once bool
	// Logger receives one entry per failed turn.
	Logger logging.Logger
}

// Runner drives a flow from line based input.
type Runner struct {
	flow   flow.Flow
	opts   Options
	warn   *color.Color
	failed *color.Color
}

// New constructs a Runner with optional overrides.
func New(f flow.Flow, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Prompt:      "> ",
		ExitTokens:  []string{"exit", "quit", "bye"},
		EmptyNotice: "Please enter a message.",
		ErrorNotice: "An error occurred:",
		Logger:      logging.NoOpLogger{},

		MaxLineBytes:  64 * 1024,
		TooLongNotice: "Input too long. Please shorten your message.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		flow:   f,
		opts:   opts,
		warn:   color.New(color.FgYellow),
		failed: color.New(color.FgRed),
	}
}

// IsExit reports whether line is one of the configured exit tokens.
func (r *Runner) IsExit(line string) bool {
	line = strings.TrimSpace(line)
	for _, tok := range r.opts.ExitTokens {
		if strings.EqualFold(line, tok) {
			return true
		}
	}
	return false
}

// Run reads lines from in until an exit token, end of input or ctx is done.
// It returns nil on a normal exit; read failures and cancellation are
// returned. Cancellation is observed while waiting for input.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if r.opts.Greeting != "" {
		fmt.Fprintln(out, r.opts.Greeting)
	}

	done := make(chan struct{})
	defer close(done)

	lines := readLines(in, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, r.opts.Prompt)

		var (
			res readResult
			ok  bool
		)

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case res, ok = <-lines:
		}

		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		if res.err != nil {
			return fmt.Errorf("read input: %w", res.err)
		}

		// A line and the cancellation may arrive together.
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(res.line)

		if r.opts.MaxLineBytes > 0 && len(line) > r.opts.MaxLineBytes {
			r.warn.Fprintln(out, r.opts.TooLongNotice)
			continue
		}

		if r.IsExit(line) {
			if r.opts.Farewell != "" {
				fmt.Fprintln(out, r.opts.Farewell)
			}
			return nil
		}

		if line == "" && r.opts.RejectEmpty {
			r.warn.Fprintln(out, r.opts.EmptyNotice)
			continue
		}

		r.turn(ctx, line, out)

		if r.opts.Once {
			return nil
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLines delivers lines from in until end of input or until done is
// closed. The goroutine stays blocked in Read if in never yields; for stdin
// that ends with the process.
func readLines(in io.Reader, done <-chan struct{}) <-chan readResult {
	ch := make(chan readResult)

	go func() {
		defer close(ch)

		br := bufio.NewReader(in)

		for {
			s, err := br.ReadString('\n')
			if s != "" {
				select {
				case ch <- readResult{line: s}:
				case <-done:
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case ch <- readResult{err: err}:
					case <-done:
					}
				}
				return
			}
		}
	}()

	return ch
}

// turn runs the flow once and prints either the result or one error line.
func (r *Runner) turn(ctx context.Context, line string, out io.Writer) {
	if r.opts.Normalize != nil {
		line = r.opts.Normalize(line)
	}

	result, err := r.flow.Run(ctx, line)
	if err != nil {
		r.opts.Logger.Error("runner.turn.error", "flow", r.flow.Name(), "error", err.Error())
		r.failed.Fprintln(out, strings.TrimSpace(r.opts.ErrorNotice+" "+oneLine(err.Error())))
		return
	}

	fmt.Fprintln(out, r.opts.ResultPrefix+result+r.opts.ResultSuffix)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
