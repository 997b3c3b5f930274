// Package web carries the static dashboard served by the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

// devModeEnv switches asset serving from the embedded copy to the source
// tree, so that dashboard edits show up without rebuilding.
const devModeEnv = "PERIPHSIM_MONITOR_DEV"

//go:embed dist/*
var staticAssets embed.FS

// GetAssets returns the dashboard file system. In development mode the
// files come from the source tree instead of the binary.
func GetAssets() http.FileSystem {
	if devMode() {
		return http.Dir(sourceDistDir())
	}

	sub, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func devMode() bool {
	v, ok := os.LookupEnv(devModeEnv)
	if !ok {
		return false
	}

	v = strings.ToLower(v)

	return v == "true" || v == "1"
}

// sourceDistDir locates the dist directory next to this source file.
func sourceDistDir() string {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the web package source")
	}

	dir := path.Join(path.Dir(thisFile), "dist")
	fmt.Printf("Monitor in development mode, serving assets from %s\n", dir)

	return dir
}
