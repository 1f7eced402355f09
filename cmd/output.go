package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/filesense/internal/ai"
	"github.com/KaramelBytes/filesense/internal/dataset"
	"github.com/KaramelBytes/filesense/internal/i18n"
	"github.com/KaramelBytes/filesense/internal/report"
	"github.com/KaramelBytes/filesense/internal/service"
	"github.com/KaramelBytes/filesense/internal/utils"
)

// errReported marks a failure already shown to the user.
var errReported = errors.New("error already reported")

var (
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	errorBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#EF4444")).Padding(0, 2)
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717A"))
)

// userMessage picks the localized message for err, plus a detail line.
func userMessage(err error, text i18n.Copy) (string, string) {
	var se *service.Error
	switch {
	case errors.Is(err, errEmptyFile):
		return text.EmptyFile, ""
	case errors.Is(err, dataset.ErrUnsupported):
		return text.Unexpected, err.Error()
	case errors.As(err, &se):
		switch se.Kind {
		case service.InvalidInput:
			return text.InvalidDataset, ""
		case service.UpstreamError:
			if hint := ai.Hint(se); hint != "" {
				return text.AIError, se.Message + " (" + hint + ")"
			}
			return text.AIError, se.Message
		case service.ConfigurationError:
			return text.Unexpected, se.Message + " (set OPENROUTER_API_KEY or 'filesense config set api_key ...')"
		default:
			return text.Unexpected, se.Error()
		}
	}
	return text.Unexpected, err.Error()
}

// showError prints the single error view and returns errReported.
func showError(w io.Writer, err error, text i18n.Copy) error {
	msg, detail := userMessage(err, text)
	body := errorTitleStyle.Render("✗ "+text.ErrorTitle) + "\n" + msg
	if detail != "" {
		body += "\n" + hintStyle.Render(detail)
	}
	body += "\n\n" + hintStyle.Render("↻ "+text.Retry)
	fmt.Fprintln(w, errorBoxStyle.Render(body))
	return errReported
}

type outputOptions struct {
	JSON     bool
	HTMLPath string
	FileName string
	Copy     i18n.Copy
	Writer   io.Writer
}

// writeReport prints res as JSON or the terminal dashboard and, when asked,
// also saves the HTML dashboard.
func writeReport(res *report.AIResult, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.HTMLPath != "" {
		var page bytes.Buffer
		if err := report.RenderHTML(&page, res, opts.FileName, opts.Copy); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(opts.HTMLPath, page.Bytes()); err != nil {
			return err
		}
	}
	if opts.JSON {
		b, err := reportJSON(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	} else if err := report.RenderTerminal(w, res, opts.FileName, opts.Copy); err != nil {
		return err
	}
	if opts.HTMLPath != "" && !opts.JSON {
		fmt.Fprintf(w, "\n✓ Saved HTML report to %s\n", opts.HTMLPath)
	}
	return nil
}

// reportJSON indents the model's own JSON when there is one, so fields the
// dashboard does not use are kept.
func reportJSON(res *report.AIResult) ([]byte, error) {
	raw := res.Raw()
	if raw == nil {
		return utils.PrettyJSON(res)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent report: %w", err)
	}
	return buf.Bytes(), nil
}
