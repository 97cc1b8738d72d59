package jungfrau

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

const gainMapQuery = "SELECT Detector, Module, Path FROM GainMaps WHERE Detector = ? AND Module = ?"

type GainMapEntry struct {
	Detector string `db:"Detector"`
	Module   string `db:"Module"`
	Path     string `db:"Path"`
}

func databaseURI(user string, pass string, host string, dbname string) string {
	port := "3306"
	return fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", databaseURI(user, pass, host, dbname))
	return db, err
}

// GetGainMapFile looks up the gain map file registered for a module of a detector.
func GetGainMapFile(db *sqlx.DB, detector string, module string) (string, error) {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading gain map location of %s module %s from database", detector, module)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", gainMapQuery)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(gainMapQuery, detector, module)
	if err != nil {
		return "", fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var entries []GainMapEntry
	for rows.Next() {
		result := GainMapEntry{}
		if err := rows.StructScan(&result); err != nil {
			return "", fmt.Errorf("error scanning DB row: %w", err)
		}
		entries = append(entries, result)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error reading DB rows: %w", err)
	}
	return pickGainMap(entries, detector, module)
}

func pickGainMap(entries []GainMapEntry, detector string, module string) (string, error) {
	switch len(entries) {
	case 0:
		return "", &CalibrationError{Err: fmt.Errorf("no gain map registered for %s module %s", detector, module)}
	case 1:
		return entries[0].Path, nil
	default:
		return "", &CalibrationError{Err: fmt.Errorf("%d gain maps registered for %s module %s", len(entries), detector, module)}
	}
}
