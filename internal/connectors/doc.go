// Package connectors provides document source implementations. Each
// connector knows how to load extracted report documents from a specific
// location; the filesystem connector is the only one wired today.
package connectors
