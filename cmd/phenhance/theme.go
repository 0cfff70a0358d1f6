package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/phenhance/internal/output"
	"github.com/jmylchreest/phenhance/internal/theme"
)

var themeOpts struct {
	format   string
	template string
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the detected color scheme",
	Long: `Detect the color-scheme source the way run does and print the
current scheme. Nothing is sent.

  phenhance theme --format json
  phenhance theme --template '{{.Theme}}'`,
	Args: cobra.NoArgs,
	RunE: runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)

	themeCmd.Flags().StringVarP(&themeOpts.format, "format", "f", "text",
		"Output format (text, json, yaml)")
	themeCmd.Flags().StringVar(&themeOpts.template, "template", "",
		"Custom Go template for text output")
}

func runTheme(cmd *cobra.Command, args []string) error {
	formatter, err := createFormatter(themeOpts.format, themeOpts.template)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	return formatter.Format(os.Stdout, detectThemeReport(ctx))
}

// detectThemeReport resolves the configured source and reads it once.
func detectThemeReport(ctx context.Context) output.ThemeReport {
	source, err := theme.Detect(ctx, cfg.Theme.ColorScheme, logger)
	if err != nil {
		return output.ThemeReport{Source: "none", Error: err.Error()}
	}
	defer closeSource(source)

	report := output.ThemeReport{Source: source.Name()}
	scheme, err := source.Scheme(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Scheme = scheme.String()
	report.PrefersDark = scheme.IsDark()
	report.Theme = "light"
	if report.PrefersDark {
		report.Theme = "dark"
	}
	return report
}

// createFormatter creates the output formatter from flag values.
func createFormatter(format, tmpl string) (output.Formatter, error) {
	formatType, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(formatType, output.FormatterOptions{Template: tmpl})
}
