package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/service"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// sideBySideMinWidth is the narrowest terminal that gets the two column
// diff by default.
const sideBySideMinWidth = 120

// Prompter asks on a line-oriented terminal how each conflict is resolved.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	width int
}

// NewPrompter reads stdin and writes to stderr, sized by $COLUMNS.
func NewPrompter() *Prompter {
	p := NewPrompterWithIO(os.Stdin, os.Stderr)
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		p.WithWidth(cols)
	}
	return p
}

func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, width: service.DefaultDiffWidth}
}

// WithWidth sets the terminal width used to lay out diffs.
func (p *Prompter) WithWidth(width int) *Prompter {
	if width > 0 {
		p.width = width
	}
	return p
}

func (p *Prompter) printUnified(c domain.Conflict) {
	for _, line := range service.GenerateEntityDiff(c.SourceState, c.TargetState, service.DefaultDiffContext) {
		fmt.Fprintln(p.out, line)
	}
}

func (p *Prompter) printSideBySide(c domain.Conflict) {
	column := max((p.width-3)/2, 1)
	fmt.Fprintf(p.out, "%-*s   %s\n", column, string(c.Direction.Source()), c.Direction.Target())
	for _, l := range service.GenerateSideBySideDiff(c.SourceState, c.TargetState, p.width) {
		fmt.Fprintf(p.out, "%-*s %c %s\n", column, l.Left, l.Marker, l.Right)
	}
}

func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, errors.CodeValidation, "no answer given")
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) Resolve(ctx context.Context, c domain.Conflict) (domain.Resolution, error) {
	fmt.Fprintf(p.out, "\nConflict: %s '%s' (%s -> %s)\n", c.EntityType.Singular(), c.EntityName,
		c.Direction.Source(), c.Direction.Target())
	fmt.Fprintf(p.out, "Drifted fields: %s\n", strings.Join(c.DriftFields, ", "))
	if p.width >= sideBySideMinWidth {
		p.printSideBySide(c)
	} else {
		p.printUnified(c)
	}

	for {
		fmt.Fprint(p.out, "[s]ource, [t]arget, s[k]ip, [m]erge, [d]iff side by side? ")
		answer, err := p.readLine(ctx)
		if err != nil {
			return domain.Resolution{}, err
		}
		res := domain.Resolution{Conflict: c, ResolvedAt: time.Now().UTC()}
		switch strings.ToLower(answer) {
		case "s", "source":
			res.Action = domain.ActionKeepSource
		case "t", "target":
			res.Action = domain.ActionKeepTarget
		case "k", "skip", "":
			res.Action = domain.ActionSkip
		case "d", "diff":
			p.printSideBySide(c)
			continue
		case "m", "merge":
			fields, err := p.mergeFields(ctx, c)
			if err != nil {
				return domain.Resolution{}, err
			}
			res.Action = domain.ActionMerge
			res.MergedState = service.MergeFields(c, fields)
			res.Note = "source fields: " + strings.Join(fields, ",")
		default:
			fmt.Fprintf(p.out, "unknown choice %q\n", answer)
			continue
		}
		return res, nil
	}
}

func (p *Prompter) mergeFields(ctx context.Context, c domain.Conflict) ([]string, error) {
	fmt.Fprintf(p.out, "Fields to take from %s (comma separated, default all drifted): ", c.Direction.Source())
	answer, err := p.readLine(ctx)
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return c.DriftFields, nil
	}
	var fields []string
	for _, f := range strings.Split(answer, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	answer, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
