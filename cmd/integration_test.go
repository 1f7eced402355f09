package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/filesense/internal/report"
)

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// Reset bound variables that persist across invocations
	anaLang, anaModel, anaProvider, anaOllamaHost, anaHTMLPath = "", "", "", "", ""
	anaJSON, anaDryRun, anaStrict = false, false, false
	anaBudgetLimit = 0
	profJSON = false
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ventas.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

const salesCSV = "city,sales\nLima,100\nCusco,40\nLima,75\n"

func TestCLI_ProfileMarkdownAndJSON(t *testing.T) {
	path := writeCSV(t, salesCSV)
	out, _, err := runCmd(t, "profile", path)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !strings.Contains(out, "Rows: 3") || !strings.Contains(out, "- sales: numeric") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}

	out, _, err = runCmd(t, "profile", path, "--json")
	if err != nil {
		t.Fatalf("profile --json: %v", err)
	}
	var prof struct {
		RowCount int                        `json:"rowCount"`
		Columns  map[string]json.RawMessage `json:"columns"`
	}
	if err := json.Unmarshal([]byte(out), &prof); err != nil || prof.RowCount != 3 || len(prof.Columns) != 2 {
		t.Fatalf("profile json = %+v, %v", prof, err)
	}
}

func TestCLI_AnalyzeDryRun(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	path := writeCSV(t, salesCSV)
	out, _, err := runCmd(t, "analyze", path, "--dry-run", "--lang", "en")
	if err != nil {
		t.Fatalf("dry-run: %v", err)
	}
	for _, want := range []string{"--dry-run", "google/gemini-2.0-flash-001", "ENGLISH", `Archivo: "ventas.csv"`, "Estimated max cost"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q", want)
		}
	}
}

func TestCLI_AnalyzeEmptyFile(t *testing.T) {
	path := writeCSV(t, "city,sales\n")
	_, errOut, err := runCmd(t, "analyze", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported error, got %v", err)
	}
	if !strings.Contains(errOut, "El archivo parece estar vacío.") {
		t.Fatalf("stderr missing empty-file message:\n%s", errOut)
	}
}

func TestCLI_AnalyzeMissingKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	path := writeCSV(t, salesCSV)
	_, errOut, err := runCmd(t, "analyze", path, "--lang", "English")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported error, got %v", err)
	}
	if !strings.Contains(errOut, "We couldn't process the file") || !strings.Contains(errOut, "OPENROUTER_API_KEY") {
		t.Fatalf("unexpected error view:\n%s", errOut)
	}
}

func TestCLI_AnalyzeAgainstFakeProvider(t *testing.T) {
	result := `{"analysisTitle":"Ventas por ciudad","summary":"Lima concentra las ventas.","kpis":[{"title":"Total","value":215,"subValue":"3 filas","trend":"up","color":"green"}],"charts":[{"title":"Ventas","type":"bar","description":"Por ciudad","data":[{"label":"Lima","value":175},{"label":"Cusco","value":40}]}],"recommendations":[{"title":"Priorizar Lima","text":"Reforzar stock.","impact":"high"}]}`
	var gotAuth, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotFormat = body.ResponseFormat.Type
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "gen-1",
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": result}}},
		})
	}))
	defer srv.Close()
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("FILESENSE_OPENROUTER_BASE_URL", srv.URL)

	path := writeCSV(t, salesCSV)
	htmlPath := filepath.Join(t.TempDir(), "report.html")
	out, _, err := runCmd(t, "analyze", path, "--json", "--html", htmlPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if gotAuth != "Bearer sk-test" || gotFormat != "json_object" {
		t.Fatalf("unexpected request: auth=%q format=%q", gotAuth, gotFormat)
	}
	var res report.AIResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.AnalysisTitle != "Ventas por ciudad" || len(res.Charts) != 1 || res.KPIs[0].Value != "215" {
		t.Fatalf("unexpected result: %+v", res)
	}
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(page), "Priorizar Lima") {
		t.Fatalf("html report missing recommendation")
	}

	out, _, err = runCmd(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze (terminal): %v", err)
	}
	if !strings.Contains(out, "Ventas por ciudad") || !strings.Contains(out, "IMPACTO ALTO") {
		t.Fatalf("unexpected dashboard:\n%s", out)
	}
}
