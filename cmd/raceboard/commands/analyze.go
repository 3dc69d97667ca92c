package commands

import (
	"fmt"

	"github.com/dhkang-dev/raceboard/internal/analyzer"
	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
)

// AnalyzeCmd implements the 'analyze' command.
type AnalyzeCmd struct {
	CSV      string `arg:"" optional:"" help:"Race CSV log to analyze (default from config)"`
	Output   string `short:"o" help:"Directory to write the report into (default from config)"`
	Encoding string `help:"Log file encoding (auto|utf-8|euc-kr, default from config)"`
}

func (a *AnalyzeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	csvPath := a.CSV
	if csvPath == "" {
		csvPath = cfg.Analyze.CSVPath
	}
	if csvPath == "" {
		return apperrors.ConfigRequired("analyze.csv_path")
	}

	outputDir := a.Output
	if outputDir == "" {
		outputDir = cfg.Analyze.OutputDir
	}
	if outputDir == "" {
		outputDir = config.DefaultReportDir
	}

	encoding := a.Encoding
	if encoding == "" {
		encoding = cfg.Analyze.Encoding
	}

	res, err := analyzer.New(encoding).AnalyzeFile(csvPath)
	if err != nil {
		return err
	}

	reportPath, err := analyzer.WriteTextReport(res, outputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzed %s\n", csvPath)
	fmt.Printf("Time span: %s - %s\n", res.FirstTime, res.LastTime)
	fmt.Printf("Total races: %d\n", res.RaceCount)
	fmt.Printf("Report written to %s\n", reportPath)
	return nil
}
