package main

import (
	"embed"
	"io/fs"
	"os"

	assetfs "github.com/elazarl/go-bindata-assetfs"
)

//go:embed ui
var uiFiles embed.FS

func assetDir(name string) ([]string, error) {
	entries, err := fs.ReadDir(uiFiles, name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func assetInfo(name string) (os.FileInfo, error) {
	return fs.Stat(uiFiles, name)
}

func assetFS() *assetfs.AssetFS {
	return &assetfs.AssetFS{
		Asset:     uiFiles.ReadFile,
		AssetDir:  assetDir,
		AssetInfo: assetInfo,
		Prefix:    "ui",
	}
}
