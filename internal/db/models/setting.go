// Package models contains database model definitions.
package models

import "gorm.io/datatypes"

// Setting is a named JSON document, e.g. backend_server or widget_appearance_<websiteId>.
type Setting struct {
	ID    uint64         `gorm:"primaryKey"`
	Name  string         `gorm:"unique;size:191"`
	Value datatypes.JSON `gorm:"not null"`
}

// All lists every model the daemon migrates.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
		&Setting{},
	}
}
