package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/embedding"
	"github.com/jobhelper/jobhelper/internal/profile"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Parse the profile document and create its embedding",
	Run: func(cmd *cobra.Command, _ []string) {
		runInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "recreate the embedding even if it already exists")
}

func runInit(cmd *cobra.Command) {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	prof, err := profile.Load(config.ProfilePath)
	if err != nil {
		zlogger.Fatal("loading profile document",
			zap.Error(err),
			zap.String("path", config.ProfilePath),
			zap.String("hint", "create the profile document or set profile-path in the configuration file"),
		)
	}

	fmt.Println(prof.Summary())
	fmt.Println()

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		log.Fatalf("reading force flag: %v", err)
	}

	cachePath := config.embeddingCachePath()

	// The presence check avoids requiring an API key when the embedding is
	// already on disk.
	probe := embedding.NewCache(cachePath, nil, zlogger)
	if probe.Exists() && !force {
		zlogger.Info("profile embedding already exists",
			zap.String("path", cachePath),
			zap.String("hint", "use --force to recreate it"),
		)
		return
	}

	embedder, err := newEmbedder(ctx, config, zlogger)
	if err != nil {
		zlogger.Fatal("building embedding provider", zap.Error(err))
	}

	cache := embedding.NewCache(cachePath, embedder, zlogger)

	vec, err := cache.GetOrCreate(ctx, prof.EmbeddingText(), force)
	if err != nil {
		zlogger.Fatal("creating profile embedding", zap.Error(err))
	}

	zlogger.Info("initialization complete",
		zap.String("path", cachePath),
		zap.Int("dimensions", len(vec)),
	)

	fmt.Println("Next steps:")
	fmt.Printf("  1. Add jobs: %s jobs add\n", app)
	fmt.Printf("  2. Match jobs: %s match\n", app)
}
