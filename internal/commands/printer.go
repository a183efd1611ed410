package commands

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/herald/internal/core/styles"
)

// printer writes styled command output to the root command's writer.
type printer struct {
	w io.Writer
}

func newPrinter(c *cli.Command) printer {
	return printer{w: c.Root().Writer}
}

func (p printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p printer) Successf(format string, args ...any) {
	p.Printf("%s", styles.SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) Warnf(format string, args ...any) {
	p.Printf("%s", styles.WarningStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) Errorf(format string, args ...any) {
	p.Printf("%s", styles.ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) Mutedf(format string, args ...any) {
	p.Printf("%s", styles.MutedStyle.Render(fmt.Sprintf(format, args...)))
}
