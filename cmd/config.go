package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/filesense/internal/config"
	"github.com/KaramelBytes/filesense/internal/i18n"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set FileSense configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printConfig(w io.Writer, c *cfgpkg.Global) {
	fmt.Fprintf(w, "api_key: %s\n", mask(c.APIKey))
	fmt.Fprintf(w, "provider: %s\n", c.Provider)
	fmt.Fprintf(w, "model: %s\n", c.Model)
	fmt.Fprintf(w, "language: %s\n", c.Language)
	fmt.Fprintf(w, "sample_rows: %d\n", c.SampleRows)
	fmt.Fprintf(w, "strict_schema: %t\n", c.StrictSchema)
	if c.MaxTokens > 0 {
		fmt.Fprintf(w, "max_tokens: %d\n", c.MaxTokens)
	}
	if c.Temperature > 0 {
		fmt.Fprintf(w, "temperature: %.3f\n", c.Temperature)
	}
	if c.ModelsFile != "" {
		fmt.Fprintf(w, "models_file: %s\n", c.ModelsFile)
	}
	fmt.Fprintf(w, "server_addr: %s\n", c.ServerAddr)
	fmt.Fprintf(w, "max_body_mb: %d\n", c.MaxBodyMB)
	fmt.Fprintf(w, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
	fmt.Fprintf(w, "retry_max_attempts: %d\n", c.RetryMaxAttempts)
	fmt.Fprintf(w, "retry_base_delay_ms: %d\n", c.RetryBaseDelayMs)
	fmt.Fprintf(w, "retry_max_delay_ms: %d\n", c.RetryMaxDelayMs)
	fmt.Fprintf(w, "ollama_host: %s\n", c.OllamaHost)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "api_key":
		c.APIKey = val
	case "model":
		c.Model = val
	case "provider":
		p := normalizeProvider(val)
		if p != "openrouter" && p != "ollama" {
			return fmt.Errorf("invalid provider: %s (use openrouter or ollama)", val)
		}
		c.Provider = p
	case "language":
		c.Language = i18n.ReportLanguage(val)
	case "sample_rows":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.SampleRows = i
	case "max_tokens":
		i, err := atoi(0)
		if err != nil {
			return err
		}
		c.MaxTokens = i
	case "temperature":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for temperature: %v", val)
		}
		c.Temperature = f
	case "strict_schema":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for strict_schema: %v", val)
		}
		c.StrictSchema = b
	case "models_file":
		c.ModelsFile = val
	case "server_addr":
		c.ServerAddr = val
	case "max_body_mb":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.MaxBodyMB = i
	case "http_timeout_sec":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.HTTPTimeoutSec = i
	case "retry_max_attempts":
		i, err := atoi(1)
		if err != nil {
			return err
		}
		c.RetryMaxAttempts = i
	case "retry_base_delay_ms":
		i, err := atoi(0)
		if err != nil {
			return err
		}
		c.RetryBaseDelayMs = i
	case "retry_max_delay_ms":
		i, err := atoi(0)
		if err != nil {
			return err
		}
		c.RetryMaxDelayMs = i
	case "ollama_host":
		c.OllamaHost = strings.TrimRight(val, "/")
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
