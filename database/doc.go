// Package database selects and wires a metadata backend. It dispatches to
// the postgres and sqlite subpackages based on configuration and exposes a
// single Connect entrypoint plus a backend-neutral Database interface.
package database
