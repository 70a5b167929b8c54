package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
)

const starterSchema = `// Declared tables. Columns are NOT NULL unless the type ends in '?'.
table users {
  id    INTEGER @primary @autoincrement
  name  TEXT
  email TEXT?   @unique
}

unique index idx_users_email on users(email)
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter .sqlorm.yaml and schema file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	schemaPath := filepath.Join(dir, "schema.sqlorm")
	if exists, err := afero.Exists(config.AppFs, schemaPath); err != nil {
		return err
	} else if exists {
		ui.PrintWarning("Schema file already exists: %s", schemaPath)
	} else {
		if err := config.AppFs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(config.AppFs, schemaPath, []byte(starterSchema), 0o644); err != nil {
			return err
		}
		ui.PrintSuccess("Created %s", schemaPath)
	}

	configPath := filepath.Join(dir, config.FileName)
	if exists, err := afero.Exists(config.AppFs, configPath); err != nil {
		return err
	} else if exists {
		ui.PrintWarning("Config already exists: %s", configPath)
		return nil
	}
	starter := &config.Config{
		SchemaPath:  "schema.sqlorm",
		Provider:    "sqlite",
		Driver:      "sqlite3",
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Preserve:    true,
	}
	if starter.DatabaseURL == "" {
		starter.DatabaseURL = "file:app.db"
	}
	if err := config.Save(starter, dir); err != nil {
		return err
	}
	ui.PrintSuccess("Created %s", configPath)
	ui.PrintList([]string{
		"Edit schema.sqlorm to declare your tables",
		"Run: sqlorm plan",
		"Run: sqlorm sync",
	})
	return nil
}
