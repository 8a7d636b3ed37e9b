package labeldb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/logs"

	"github.com/labelforge/labelforge/pkg/dbh"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE project(
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			input_type TEXT NOT NULL,
			interface TEXT NOT NULL,
			created_at INT NOT NULL
		);

		CREATE TABLE label(
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			asset_id TEXT NOT NULL,
			response TEXT,
			created_at INT NOT NULL
		);

		CREATE INDEX idx_label_project_id ON label(project_id);

		CREATE TABLE annotation_record(
			label_id TEXT NOT NULL,
			id TEXT NOT NULL,
			seq INT NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (label_id, id)
		);
		`))

	return migs
}
