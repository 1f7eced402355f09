package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filesense/internal/ai"
	"github.com/KaramelBytes/filesense/internal/dataset"
	"github.com/KaramelBytes/filesense/internal/i18n"
	"github.com/KaramelBytes/filesense/internal/prompt"
	"github.com/KaramelBytes/filesense/internal/service"
	"github.com/KaramelBytes/filesense/internal/utils"
)

// errEmptyFile is reported when a file decodes to zero rows.
var errEmptyFile = errors.New("file has no data rows")

// Completion tokens assumed for cost estimates when max_tokens is unset.
const estimatedCompletionTokens = 2048

var (
	anaLang        string
	anaModel       string
	anaProvider    string
	anaOllamaHost  string
	anaHTMLPath    string
	anaJSON        bool
	anaDryRun      bool
	anaStrict      bool
	anaBudgetLimit float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX/JSON file and render an AI analysis report",
	Example: `  filesense analyze ventas.csv
  filesense analyze sales.xlsx --lang English --html report.html
  filesense analyze data.csv --provider ollama --model llama3.1:8b-instruct
  filesense analyze data.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		lang := i18n.Resolve(selectLanguage(cfg, anaLang))
		text := lang.Copy
		stderr := cmd.ErrOrStderr()

		spin := startSpinner(stderr, text.Reading)
		defer spin.Stop()

		rows, err := dataset.LoadFile(path)
		if err == nil && len(rows) == 0 {
			err = errEmptyFile
		}
		if err != nil {
			spin.Stop()
			return showError(stderr, err, text)
		}

		svc, provider, err := newService(cfg, serviceOptions{
			runtimeOptions: runtimeOptions{ProviderFlag: anaProvider, OllamaHost: anaOllamaHost},
			Model:          anaModel,
			Strict:         anaStrict,
		}, newLogger())
		if err != nil {
			spin.Stop()
			return err
		}
		req := service.Request{
			Rows:     rows,
			FileName: filepath.Base(path),
			Language: i18n.ReportLanguage(selectLanguage(cfg, anaLang)),
		}

		instruction, err := svc.Prompt(req)
		if err != nil {
			spin.Stop()
			return showError(stderr, err, text)
		}
		est := utils.EstimatePrompt(prompt.SystemInstruction, instruction)
		tokens := est.Total()
		completion := estimatedCompletionTokens
		if svc.MaxTokens > 0 {
			completion = svc.MaxTokens
		}
		estCost, priced := ai.EstimateCostUSD(svc.Model, tokens, completion)

		if anaDryRun {
			spin.Stop()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider: %s  Model: %s\n", provider, svc.Model)
			fmt.Fprintf(out, "Rows: %d  Tokens: total≈%d (system≈%d, prompt≈%d)\n", len(rows), tokens, est.System, est.Prompt)
			if priced {
				fmt.Fprintf(out, "Estimated max cost: ~$%.4f\n", estCost)
			}
			warnContext(out, svc.Model, tokens, completion)
			fmt.Fprintln(out, "\n--dry-run: no API call will be made. Prompt preview below --")
			fmt.Fprintln(out, prompt.SystemInstruction)
			fmt.Fprintln(out, instruction)
			return nil
		}
		if err := enforceBudget(estCost, anaBudgetLimit); err != nil {
			spin.Stop()
			return err
		}
		warnContext(stderr, svc.Model, tokens, completion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spin.Describe(text.Analyzing)
		res, err := svc.Analyze(ctx, req)
		spin.Stop()
		if err != nil {
			return showError(stderr, err, text)
		}
		return writeReport(res, outputOptions{
			JSON:     anaJSON,
			HTMLPath: anaHTMLPath,
			FileName: req.FileName,
			Copy:     text,
			Writer:   cmd.OutOrStdout(),
		})
	},
}

// warnContext prints a warning when prompt plus completion may not fit the
// model's context window.
func warnContext(w io.Writer, model string, tokens, completion int) {
	mi, ok := ai.LookupModel(model)
	if !ok || mi.ContextTokens <= 0 {
		return
	}
	if tokens+completion > mi.ContextTokens {
		fmt.Fprintf(w, "⚠ Prompt (%d tokens) + completion (%d) exceeds %s context window (~%d tokens).\n",
			tokens, completion, mi.Name, mi.ContextTokens)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaLang, "lang", "l", "", "report language: Español, English, Português, Français or a tag like 'en' (default from config)")
	analyzeCmd.Flags().StringVarP(&anaModel, "model", "m", "", "model id (default from config or provider)")
	analyzeCmd.Flags().StringVar(&anaProvider, "provider", "", "model provider: openrouter|ollama (default from config)")
	analyzeCmd.Flags().StringVar(&anaOllamaHost, "ollama-host", "", "Ollama host URL (default from config or FILESENSE_OLLAMA_HOST)")
	analyzeCmd.Flags().StringVar(&anaHTMLPath, "html", "", "also write the HTML dashboard to this path")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the analysis result as JSON instead of the dashboard")
	analyzeCmd.Flags().BoolVar(&anaDryRun, "dry-run", false, "print the prompt and estimates without calling the model")
	analyzeCmd.Flags().BoolVar(&anaStrict, "strict", false, "reject results that do not match the report schema")
	analyzeCmd.Flags().Float64Var(&anaBudgetLimit, "budget-limit", 0, "abort when the estimated cost in USD exceeds this value")
}
