package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"coc-war-tracker/internal/constants"
	fxmodules "coc-war-tracker/internal/fx"
	"coc-war-tracker/internal/service"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const usage = `usage:
  warlog import <file>...          build, archive and report war payloads (.json, .json.zst, .json.gz)
  warlog league <file> [clanTag]   show a league group, or one clan's master roster
  warlog defenses <tag> [limit]    archived defenses of a member across imported wars
  warlog history <clanTag> [limit] most recently imported wars of a clan
`

var errUsage = errors.New("invalid arguments")

type command struct {
	name  string
	args  []string
	limit int
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}

	cmd := command{name: args[0], args: args[1:]}
	switch cmd.name {
	case "import":
		if len(cmd.args) == 0 {
			return command{}, fmt.Errorf("%w: import needs at least one file", errUsage)
		}
	case "league":
		if len(cmd.args) < 1 || len(cmd.args) > 2 {
			return command{}, fmt.Errorf("%w: league needs a file and an optional clan tag", errUsage)
		}
	case "defenses", "history":
		if len(cmd.args) < 1 || len(cmd.args) > 2 {
			return command{}, fmt.Errorf("%w: %s needs a tag and an optional limit", errUsage, cmd.name)
		}
		if len(cmd.args) == 2 {
			limit, err := strconv.Atoi(cmd.args[1])
			if err != nil || limit <= 0 {
				return command{}, fmt.Errorf("%w: limit must be a positive number", errUsage)
			}
			cmd.limit = limit
			cmd.args = cmd.args[:1]
		}
	default:
		return command{}, fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
	}
	return cmd, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	app := newApp(cmd, os.Stdout, fx.NopLogger)

	startCtx, cancel := context.WithTimeout(context.Background(), constants.ImportTimeout+constants.ShutdownTimeout)
	defer cancel()

	// a failed start runs OnStop of the hooks that started, closing the database
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newApp(cmd command, out io.Writer, opts ...fx.Option) *fx.App {
	return fx.New(
		fxmodules.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			wars *service.WarService,
			leagues *service.LeagueService,
			db *sql.DB,
			logger zerolog.Logger,
		) {
			runCommand(lc, cmd, out, wars, leagues, db, logger)
		}),
		fx.Options(opts...),
	)
}

// runCommand registers the database hook ahead of the command hook so that
// a failing command still closes the database on rollback.
func runCommand(
	lc fx.Lifecycle,
	cmd command,
	out io.Writer,
	wars *service.WarService,
	leagues *service.LeagueService,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
				return err
			}
			return nil
		},
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Debug().Str("command", cmd.name).Strs("args", cmd.args).Msg("running command")
			return execute(ctx, cmd, wars, leagues, out)
		},
	})
}

func execute(ctx context.Context, cmd command, wars *service.WarService, leagues *service.LeagueService, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	switch cmd.name {
	case "import":
		reports, err := wars.ImportFiles(ctx, cmd.args)
		if encErr := enc.Encode(reports); encErr != nil {
			return encErr
		}
		return err
	case "league":
		group, err := leagues.LoadGroup(ctx, cmd.args[0])
		if err != nil {
			return err
		}
		if len(cmd.args) == 2 {
			roster, ok := leagues.Roster(group, cmd.args[1])
			if !ok {
				return fmt.Errorf("clan %s is not in the league group", cmd.args[1])
			}
			return enc.Encode(roster)
		}
		return enc.Encode(group)
	case "defenses":
		defenses, err := wars.DefensesOf(ctx, cmd.args[0], cmd.limit)
		if err != nil {
			return err
		}
		return enc.Encode(defenses)
	case "history":
		history, err := wars.History(ctx, cmd.args[0], cmd.limit)
		if err != nil {
			return err
		}
		return enc.Encode(history)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
}
