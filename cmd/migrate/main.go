package main

import (
	"context"
	"fmt"
	"io/fs"
	stdLog "log"
	"os"

	catalogConfig "github.com/Astemirdum/library-sync/catalog/config"
	catalogMigrations "github.com/Astemirdum/library-sync/catalog/migrations"
	directoryConfig "github.com/Astemirdum/library-sync/directory/config"
	directoryMigrations "github.com/Astemirdum/library-sync/directory/migrations"
	"github.com/Astemirdum/library-sync/pkg/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// target resolves a service's database settings and embedded migrations.
type target func() (database.DB, fs.FS)

var targets = map[string]target{
	"catalog": func() (database.DB, fs.FS) {
		return catalogConfig.NewConfig().Database, catalogMigrations.MigrationFiles
	},
	"directory": func() (database.DB, fs.FS) {
		return directoryConfig.NewConfig().Database, directoryMigrations.MigrationFiles
	},
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back a service's schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for name, t := range targets {
		root.AddCommand(newServiceCmd(name, t))
	}
	return root
}

func newServiceCmd(name string, t target) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Migrations of the %s database", name),
	}
	for _, command := range []string{database.CommandUp, database.CommandDown, database.CommandStatus} {
		command := command
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: fmt.Sprintf("goose %s on the %s database", command, name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, files := t()
				return run(cmd.Context(), cfg, files, command)
			},
		})
	}
	return cmd
}

func run(ctx context.Context, cfg database.DB, files fs.FS, command string) error {
	db, err := database.Connect(ctx, &cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db, cfg.Driver, files, command)
}

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, using environment only")
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
