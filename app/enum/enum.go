// Package enum defines enumerated types used across the application.
package enum

//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower
type theme int

const (
	themeLight theme = iota
	themeDark
)

//go:generate go run github.com/go-pkgz/enum@latest -type dbType -lower
type dbType int

const (
	dbTypeSQLite   dbType = iota // enum:alias=sqlite
	dbTypePostgres               // enum:alias=postgres
)
