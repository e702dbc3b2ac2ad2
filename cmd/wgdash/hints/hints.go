package hints

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/wgdashboard/wgdash/pkg/config"
)

// Enabled reports whether hints are printed. They are on unless the
// configuration turns them off.
func Enabled(cfg *config.Config) bool {
	return cfg == nil || cfg.HintsEnabled()
}

var (
	TipCyan           = color.New(color.FgCyan)
	TipCyanBoldItalic = color.New(color.FgCyan, color.Bold, color.Italic)
	TipGreen          = color.New(color.FgGreen)
)

// Print writes a tip suggesting command to w.
func Print(w io.Writer, cfg *config.Config, text, command string) {
	if !Enabled(cfg) {
		return
	}
	_, _ = TipCyan.Fprint(w, "Tip: ")
	_, _ = fmt.Fprint(w, text+" ")
	_, _ = TipCyanBoldItalic.Fprintln(w, command)
}
