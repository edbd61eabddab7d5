package main

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/marksengine/core"
	"github.com/trezcool/marksengine/storage/database"
)

var (
	gooseRunFunc = database.Migrate // mockable
	openDBFunc   = openDB           // mockable
)

func openDB(ctx context.Context, conf *core.Config) (*sql.DB, error) {
	db, err := database.Connect(ctx, conf)
	if err != nil {
		return nil, err
	}
	return db.DB, nil
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, up-to VERSION, ...)",
		Long: "Run a goose migration command against the app database.\n" +
			"The database is created first if it does not exist.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(cmd.Context(), args)
		},
	}
}

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, err := openDBFunc(ctx, cli.conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(ctx, db, args[0], arguments...)
}
