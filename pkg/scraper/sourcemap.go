package scraper

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/openshift/testgrade/pkg/cache/jsonfile"
)

func SaveSourceMap(path string, sourceMap map[string]string) error {
	return jsonfile.Save(path, sourceMap)
}

func LoadSourceMap(path string) (map[string]string, error) {
	sourceMap := map[string]string{}
	found, err := jsonfile.Load(path, &sourceMap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("source map %s does not exist", path)
	}
	return sourceMap, nil
}

// SuiteName is the directory holding a test source file, the second to last path segment.
func SuiteName(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func FileName(path string) string {
	return filepath.Base(path)
}

// ClassName is the part of an identity before the first ".".
func ClassName(identity string) string {
	return strings.SplitN(identity, ".", 2)[0]
}
