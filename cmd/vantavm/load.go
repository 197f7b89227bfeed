package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/vanta-vm/vanta/internal/asmjson"
	"github.com/vanta-vm/vanta/internal/loader"
)

// loadDescriptors reads every *.json file directly under dir (or dir
// itself, if it names a single file) as an asmjson-encoded assembly
// descriptor.
func loadDescriptors(dir string) ([]loader.AssemblyDescriptor, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		d, err := decodeFile(dir)
		if err != nil {
			return nil, err
		}
		return []loader.AssemblyDescriptor{d}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	descs := make([]loader.AssemblyDescriptor, 0, len(names))
	for _, name := range names {
		d, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func decodeFile(path string) (loader.AssemblyDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return loader.AssemblyDescriptor{}, err
	}
	defer f.Close()
	return asmjson.Decode(f)
}
