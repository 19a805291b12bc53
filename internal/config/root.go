package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ResolveRoot returns the absolute project root for a command argument.
// An empty argument means the working directory. When the candidate has no
// sourceDir but its parent does, the parent is used, so commands run from
// inside src/ still find the project.
func ResolveRoot(arg, sourceDir string) (string, error) {
	root := arg
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}

	expanded, err := homedir.Expand(root)
	if err != nil {
		return "", fmt.Errorf("expanding root directory: %w", err)
	}
	root, err = filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving root directory: %w", err)
	}

	if sourceDir == "" || isDir(filepath.Join(root, sourceDir)) {
		return root, nil
	}
	if parent := filepath.Dir(root); isDir(filepath.Join(parent, sourceDir)) {
		return parent, nil
	}
	return root, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
