package batch

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExts maps each accepted extension to its processing group. Groups run in
// order, so when two sources share a stem the later group's output is kept.
var imageExts = map[string]int{
	".png":  0,
	".jpg":  1,
	".jpeg": 2,
}

// Discover lists the regular files directly inside dir whose extension is png,
// jpg or jpeg in any letter case: all png files first, then jpg, then jpeg, each
// group in name order. Symbolic links are followed; anything that is not a
// regular file once resolved, such as a directory or a named pipe, is skipped.
func Discover(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read folder %q: %w", dir, err)
	}

	var names []string
	for _, file := range files {
		if _, ok := imageExts[strings.ToLower(filepath.Ext(file.Name()))]; !ok {
			continue
		}
		if !file.Type().IsRegular() {
			info, err := os.Stat(filepath.Join(dir, file.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		names = append(names, file.Name())
	}

	slices.SortStableFunc(names, func(a, b string) int {
		return cmp.Compare(extGroup(a), extGroup(b))
	})
	return names, nil
}

func extGroup(name string) int {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// OutputName replaces the extension of srcName with suffix + ".png".
func OutputName(srcName, suffix string) string {
	stem := strings.TrimSuffix(srcName, filepath.Ext(srcName))
	return stem + suffix + ".png"
}
