package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vytor/dancerank/internal/config"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/repository/sqlstore"
	"github.com/vytor/dancerank/internal/scoring"
	"github.com/vytor/dancerank/internal/services"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app      = kingpin.New("dancectl", "Administer a dancerank database and score plays offline.")
	driver   = app.Flag("driver", "Database driver (sqlite3 or postgres)").Envar(config.EnvPrefix + "DB_DRIVER").String()
	dsn      = app.Flag("dsn", "Database DSN").Envar(config.EnvPrefix + "DB_DSN").String()
	logLevel = app.Flag("log-level", "Log level").Default("WARN").String()

	migrateCmd = app.Command("migrate", "Apply pending database migrations.")

	addMusicCmd   = app.Command("add-music", "Add a song to the catalog.")
	addMusicTitle = addMusicCmd.Arg("title", "Song title").Required().String()

	addUserCmd      = app.Command("add-user", "Add a player.")
	addUserNickname = addUserCmd.Arg("nickname", "Player nickname").Required().String()
	addUserImage    = addUserCmd.Flag("image", "Profile image URL").String()

	importCmd   = app.Command("import-sheet", "Import the reference sheet of a song.")
	importMusic = importCmd.Arg("music", "Music id").Required().Int64()
	importFile  = importCmd.Arg("file", "Sheet JSON file").Required().ExistingFile()
	importVideo = importCmd.Flag("video", "Reference video URL").String()

	scoreCmd   = app.Command("score", "Grade a play against a sheet without touching the database.")
	scoreSheet = scoreCmd.Arg("sheet", "Sheet JSON file").Required().ExistingFile()
	scorePlay  = scoreCmd.Arg("play", "Play JSON file").Required().ExistingFile()

	rankingCmd   = app.Command("ranking", "Print the ranking of a song.")
	rankingMusic = rankingCmd.Arg("music", "Music id").Required().Int64()
	rankingTop   = rankingCmd.Flag("top", "Number of entries").Default("10").Short('n').Int()

	scoresCmd   = app.Command("scores", "List stored attempts of a song, newest first.")
	scoresMusic = scoresCmd.Arg("music", "Music id").Required().Int64()
	scoresLimit = scoresCmd.Flag("limit", "Maximum rows").Default("50").Short('l').Int()
)

func main() {
	app.Version("0.1.0")
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger.SetDefault(logger.New(logger.WithLevel(logger.ParseLevel(*logLevel)), logger.WithOutput(os.Stderr)))

	if err := run(context.Background(), cmd, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dancectl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, out io.Writer) error {
	if cmd == scoreCmd.FullCommand() {
		return scoreOffline(*scoreSheet, *scorePlay, out)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	scores := sqlstore.NewScoreRepository(database)
	catalog := services.NewCatalogService(sqlstore.NewMusicRepository(database), sqlstore.NewUserRepository(database), scores)

	switch cmd {
	case migrateCmd.FullCommand():
		// db.Open already migrated.
		fmt.Fprintln(out, "migrations applied")
		return nil

	case addMusicCmd.FullCommand():
		m, err := catalog.AddMusic(ctx, *addMusicTitle)
		if err != nil {
			return err
		}
		return printJSON(out, m)

	case addUserCmd.FullCommand():
		u, err := catalog.AddUser(ctx, *addUserNickname, *addUserImage)
		if err != nil {
			return err
		}
		return printJSON(out, u)

	case importCmd.FullCommand():
		frames, err := readFrames(*importFile)
		if err != nil {
			return err
		}
		svc := services.NewScoringService(scoring.NewEngine(), sqlstore.NewSheetRepository(database), scores, sqlstore.NewUserRepository(database), nil, nil)
		if err := svc.ImportSheet(ctx, *importMusic, *importVideo, frames); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d frames for music %d\n", len(frames), *importMusic)
		return nil

	case rankingCmd.FullCommand():
		board := services.NewLeaderboardService(scores, sqlstore.NewUserRepository(database), nil, nil, 1, 0)
		entries, err := board.TopRanking(ctx, *rankingMusic, *rankingTop)
		if err != nil {
			return err
		}
		return printJSON(out, entries)

	case scoresCmd.FullCommand():
		recs, err := catalog.ListScores(ctx, *scoresMusic, *scoresLimit)
		if err != nil {
			return err
		}
		return printJSON(out, recs)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func openDB() (*db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *driver != "" {
		cfg.DBDriver = *driver
	}
	if *dsn != "" {
		cfg.DBDSN = *dsn
	}
	return db.Open(cfg.DBDriver, cfg.DBDSN)
}

func scoreOffline(sheetPath, playPath string, out io.Writer) error {
	sheet, err := readFrames(sheetPath)
	if err != nil {
		return err
	}
	play, err := readFrames(playPath)
	if err != nil {
		return err
	}
	return printJSON(out, scoring.NewEngine().Score(sheet, play))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
