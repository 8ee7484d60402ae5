package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/embedding"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var clearPrompt = promptui.Select{
	Label: "Remove all cached comparisons and embeddings?",
	Items: []string{PromptYes, PromptNo},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the comparison and embedding caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache sizes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCaches(cmd.Context(), func(_ context.Context, comparisons *cache.Cache, embeddings *embedding.Provider) error {
			cs := comparisons.Stats()
			es := embeddings.Stats()

			fmt.Fprintf(cmd.OutOrStdout(), "comparisons: %d entries\n", cs.Entries)
			fmt.Fprintf(cmd.OutOrStdout(), "embeddings:  %d entries\n", es.Entries)
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached comparisons and embeddings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			_, answer, err := clearPrompt.Run()
			if err != nil {
				return err
			}
			if answer != PromptYes {
				return nil
			}
		}

		return withCaches(cmd.Context(), func(ctx context.Context, comparisons *cache.Cache, embeddings *embedding.Provider) error {
			if err := errors.Join(comparisons.Clear(ctx), embeddings.Clear(ctx)); err != nil {
				return fmt.Errorf("clearing caches: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "caches cleared")
			return nil
		})
	},
}

func init() {
	cacheClearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCaches opens the configured stores without any AI backend and closes
// them after fn returns.
func withCaches(ctx context.Context, fn func(context.Context, *cache.Cache, *embedding.Provider) error) error {
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

	st, err := openStores(config.Cache, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	comparisons := openCache(ctx, config.Cache, st.comparisons, logger)
	embeddings := openEmbeddings(ctx, config.Embeddings, nil, st.embeddings, logger)

	fnErr := fn(ctx, comparisons, embeddings)

	if err := errors.Join(comparisons.Close(ctx), embeddings.Close(ctx)); err != nil {
		logger.Warn("closing caches", zap.Error(err))
	}

	return fnErr
}
