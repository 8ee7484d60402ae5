package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/filtering"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/skills"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a candidate's skills against a job's required skills",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMatch(cmd.Context(), cmd, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job", "", "JSON file with the job's required skills")
	matchCmd.Flags().String("candidate", "", "JSON file with the candidate's skills")
	matchCmd.Flags().IntP("workers", "w", 0, "bucket comparisons running at once (default from config)")
	matchCmd.Flags().StringP("output", "o", "text", "output format: text or json")

	matchCmd.MarkFlagRequired("job")
	matchCmd.MarkFlagRequired("candidate")

	viper.BindPFlag("workers", matchCmd.Flags().Lookup("workers"))
}

func runMatch(ctx context.Context, cmd *cobra.Command, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format %q", format)
	}

	jobPath, _ := cmd.Flags().GetString("job")
	candidatePath, _ := cmd.Flags().GetString("candidate")

	logger.Info("starting the skillmatch", zap.String("version", version))

	job, err := skills.LoadFile(jobPath)
	if err != nil {
		return err
	}
	candidate, err := skills.LoadFile(candidatePath)
	if err != nil {
		return err
	}

	steps := filtering.Default(filtering.Config{
		Excluded:    config.Filters.Excluded,
		ExcludeFile: config.Filters.ExcludeFile,
	})
	for _, name := range config.Filters.Disabled {
		filtering.DisableByName(steps, name, "disabled in config")
	}
	for _, status := range filtering.Describe(steps) {
		logger.Debug("skill filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	jobSkills, err := filtering.Run(ctx, logger, steps, job.Skills)
	if err != nil {
		return fmt.Errorf("preparing job skills: %w", err)
	}
	candidateSkills, err := filtering.Run(ctx, logger, steps, candidate.Skills)
	if err != nil {
		return fmt.Errorf("preparing candidate skills: %w", err)
	}

	st, err := openStores(config.Cache, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	p := &providers{cfg: config.AI, logger: logger}

	judge, err := p.judge(ctx)
	if err != nil {
		return fmt.Errorf("configuring judgment service: %w", err)
	}

	backend, err := p.embedder(ctx, config.Embeddings.Provider)
	if err != nil {
		return fmt.Errorf("configuring embedding backend: %w", err)
	}

	embeddings := openEmbeddings(ctx, config.Embeddings, backend, st.embeddings, logger)
	comparisons := openCache(ctx, config.Cache, st.comparisons, logger)
	defer func() {
		if err := errors.Join(comparisons.Close(ctx), embeddings.Close(ctx)); err != nil {
			logger.Warn("closing caches", zap.Error(err))
		}
	}()

	comparator, err := matching.NewComparator(
		matching.WithJudge(judge),
		matching.WithEmbeddings(embeddings),
		matching.WithCache(comparisons),
		matching.WithScorer(confidence.NewScorer(config.Confidence)),
		matching.WithComparatorLogger(logger),
	)
	if err != nil {
		return err
	}

	matcher, err := matching.NewMatcher(comparator,
		matching.WithWorkers(config.Workers),
		matching.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer matcher.Release()

	result, err := matcher.Match(ctx, matching.Request{
		JobSkills:       jobSkills,
		CandidateSkills: candidateSkills,
		JobContext:      strings.TrimSpace(job.Title + "\n" + job.Context),
	})
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return printResult(out, result)
}

func printResult(out io.Writer, result *matching.MatchResult) error {
	var b strings.Builder

	if result.Status == matching.StatusNoSkills {
		fmt.Fprintf(&b, "No job skills to match against (run %s).\n", result.ID)
		_, err := io.WriteString(out, b.String())
		return err
	}

	fmt.Fprintf(&b, "Overall match: %.1f%%\n", result.OverallMatch)
	if result.OverallConfidence != nil {
		fmt.Fprintf(&b, "Confidence:    %.1f%% (%s)\n", *result.OverallConfidence, result.ConfidenceLevel)
	}
	if result.Degraded {
		b.WriteString("Warning: some buckets could not be evaluated and count as zero.\n")
	}
	b.WriteString("\n")

	for _, bucket := range result.Buckets() {
		br := result.BucketResults[bucket]

		note := ""
		switch {
		case br.Degraded:
			note = " [not evaluated]"
		case br.Cached:
			note = " [cached]"
		}

		fmt.Fprintf(&b, "%-17s %5.1f%%  weight %.2f%s\n", bucket, br.MatchPercentage, br.Weight, note)
		if br.Confidence != nil && br.Confidence.ConfidenceScore != nil {
			fmt.Fprintf(&b, "  confidence %.1f%% (%s)\n", *br.Confidence.ConfidenceScore, br.Confidence.ConfidenceLevel)
		}
		fmt.Fprintf(&b, "  job:       %s\n", strings.Join(br.JobSkills, ", "))
		fmt.Fprintf(&b, "  candidate: %s\n", strings.Join(br.CandidateSkills, ", "))
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func newLogger() (*zap.Logger, error) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}
