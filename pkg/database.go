package aclgad

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type DetectorGeometryEntry struct {
	PixelSize         float64 `db:"PixelSize"`
	PixelSpacing      float64 `db:"PixelSpacing"`
	PixelCornerOffset float64 `db:"PixelCornerOffset"`
	DetSize           float64 `db:"DetSize"`
	NumBlocksPerSide  int     `db:"NumBlocksPerSide"`
	SensorThickness   float64 `db:"SensorThickness"`
}

type ChargeSharingEntry struct {
	IonizationEnergy    float64 `db:"IonizationEnergy"`
	AmplificationFactor float64 `db:"AmplificationFactor"`
	D0                  float64 `db:"D0"`
}

func geometryQuery(runNumber int) string {
	query := "SELECT PixelSize, PixelSpacing, PixelCornerOffset, DetSize, NumBlocksPerSide, SensorThickness " +
		"FROM DetectorGeometry WHERE MinRun <= %d and MaxRun >= %d"
	return fmt.Sprintf(query, runNumber, runNumber)
}

func chargeSharingQuery(runNumber int) string {
	query := "SELECT IonizationEnergy, AmplificationFactor, D0 " +
		"FROM ChargeSharingParams WHERE MinRun <= %d and MaxRun >= %d"
	return fmt.Sprintf(query, runNumber, runNumber)
}

// LoadRunConditions overrides the detector and charge sharing parameters of
// config with the ones stored for the run.
func LoadRunConditions(db *sqlx.DB, config Configuration, runNumber int) (Configuration, error) {
	var geometry DetectorGeometryEntry
	query := geometryQuery(runNumber)
	if config.Verbosity > 0 {
		logger.Info("Reading detector geometry from database", "database")
	}
	if config.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
	if err := db.Get(&geometry, query); err != nil {
		errMessage := fmt.Errorf("error querying detector geometry for run %d: %w", runNumber, err)
		return config, errMessage
	}

	var sharing ChargeSharingEntry
	query = chargeSharingQuery(runNumber)
	if config.Verbosity > 0 {
		logger.Info("Reading charge sharing parameters from database", "database")
	}
	if config.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
	if err := db.Get(&sharing, query); err != nil {
		errMessage := fmt.Errorf("error querying charge sharing parameters for run %d: %w", runNumber, err)
		return config, errMessage
	}

	return applyRunConditions(config, geometry, sharing), nil
}

func applyRunConditions(config Configuration, geometry DetectorGeometryEntry, sharing ChargeSharingEntry) Configuration {
	config.PixelSize = geometry.PixelSize
	config.PixelSpacing = geometry.PixelSpacing
	config.PixelCornerOffset = geometry.PixelCornerOffset
	config.DetSize = geometry.DetSize
	config.NumBlocksPerSide = geometry.NumBlocksPerSide
	config.SensorThickness = geometry.SensorThickness
	config.IonizationEnergy = sharing.IonizationEnergy
	config.AmplificationFactor = sharing.AmplificationFactor
	config.D0 = sharing.D0
	return config
}
