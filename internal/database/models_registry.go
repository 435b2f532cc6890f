package database

import "placehold/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Address{},
		&models.Geo{},
		&models.Company{},
	}
}
