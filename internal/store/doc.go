// Package store defines the Repository contract through which every
// front-end reaches persisted state, together with the error taxonomy all
// storage backends share. Implementations live under internal/platform
// (filestore, memstore, sqlite, postgres) and must be interchangeable,
// including the error kinds they return.
package store
