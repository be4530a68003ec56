package cmd

import (
	"context"

	"PalmFM/config"
	"PalmFM/db"
	"PalmFM/logger"
	"PalmFM/repository"
	"PalmFM/scanner"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the music directory and import new tracks",
	Long:  `Walks the configured music directory once, reads tags and imports tracks not yet in the library. Existing tracks are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		runScan()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	gdb, err := db.ConnectGorm(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGorm(gdb)
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("Failed to migrate database", logger.ErrorField(err))
	}

	sc := scanner.NewScanner(cfg.MusicDir, nil)
	tracks, err := sc.Scan(context.Background(), false)
	if err != nil {
		logger.Fatal("Scan failed", logger.ErrorField(err))
	}

	repo := repository.NewMySQLTrackRepository(gdb)
	inserted, err := repo.ImportTracks(tracks)
	if err != nil {
		logger.Fatal("Import failed", logger.ErrorField(err))
	}

	logger.Info("Scan finished",
		logger.Int("scanned", len(tracks)),
		logger.Int64("imported", inserted),
		logger.String("dir", cfg.MusicDir))
}
