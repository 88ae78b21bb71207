package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/summary-analyzer/internal/model"
)

var analyzeOutputDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze an executive summary document",
	Long:  "Runs field extraction and report compilation over a document read from the given file or stdin, stores the analysis, and writes Markdown and HTML reports.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, sourceID, err := readDocument(args)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, text, sourceID)
		if err != nil {
			return err
		}

		if err := env.Store.CreateAnalysis(ctx, result.Analysis); err != nil {
			return err
		}

		outDir := analyzeOutputDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outDir)
		}

		files := map[model.ArtifactFormat]struct {
			ext     string
			content string
		}{
			model.ArtifactMarkdown: {"md", result.Artifacts.Markdown},
			model.ArtifactHTML:     {"html", result.Artifacts.HTML},
		}
		for format, f := range files {
			filename := fmt.Sprintf("%s.%s", result.Basename, f.ext)
			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
				return eris.Wrapf(err, "write %s", path)
			}
			if err := env.Store.SaveArtifact(ctx, &model.Artifact{
				ID:         uuid.NewString(),
				AnalysisID: result.Analysis.ID,
				Format:     format,
				Filename:   filename,
				Content:    f.content,
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}

		zap.L().Info("analysis stored",
			zap.String("analysis_id", result.Analysis.ID),
			zap.String("company", result.Analysis.CompanyName))
		return nil
	},
}

// readDocument returns the document text and a source identifier, from
// a file argument or stdin.
func readDocument(args []string) (string, string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", eris.Wrapf(err, "read %s", args[0])
		}
		return string(data), filepath.Base(args[0]), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", eris.Wrap(err, "read stdin")
	}
	return string(data), "", nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "out", "o", "", "output directory for reports (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}
