// Package models holds the records read from the database: accounts and the
// files they own.
package models
