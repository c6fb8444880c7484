package uischema

import (
	"embed"
	"io/fs"
)

//go:embed ui/schema/*
var embeddedSchema embed.FS

// EmbeddedFS returns the bundled UI schemas (SF-424A and the project abstract
// sample). Callers may pass this filesystem to LoadFS.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchema, "ui/schema")
	if err != nil {
		// The embed directive guarantees the subpath exists, so panic is
		// acceptable here.
		panic(err)
	}
	return sub
}

// EmbeddedStore parses EmbeddedFS.
func EmbeddedStore() (*Store, error) {
	return LoadFS(EmbeddedFS())
}
