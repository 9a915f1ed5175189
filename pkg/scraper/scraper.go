// Package scraper discovers Ginkgo test definitions in an e2e source tree and derives the
// identity string "<ClassName>.<Suite description> <It description>" for each of them.
//
// Every immediate subdirectory of the source root is one test suite. The classname of a
// suite comes from its k8stest.InitTesting or ginkgo.RunSpecsWithDefaultAndCustomReporters
// call, the suite and case descriptions come from Describe and It clauses.
package scraper

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrDuplicateClassName is returned when one directory declares two different classnames.
var ErrDuplicateClassName = errors.New("directory already has a classname")

type WarningKind string

const (
	DuplicateDefinition WarningKind = "DuplicateDefinition"
	UnhandledCase       WarningKind = "UnhandledCase"
	NoClassName         WarningKind = "NoClassName"
)

// Warning is a scrape anomaly. The affected definition is dropped, the scrape carries on.
type Warning struct {
	Kind    WarningKind
	File    string
	Line    int
	Text    string
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: %s %s:%d\n%s", w.Kind, w.Message, w.File, w.Line, w.Text)
	}
	return fmt.Sprintf("%s: %s %s", w.Kind, w.Message, w.File)
}

// Definition is where a test identity is declared.
type Definition struct {
	Identity string `json:"identity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Source   string `json:"source"`
}

type Result struct {
	Definitions map[string]Definition
	// ClassNames binds each suite directory to its single classname.
	ClassNames map[string]string
	Warnings   []Warning
}

// SourceMap returns identity -> source file path, the format cached as defs2src.json.
func (r *Result) SourceMap() map[string]string {
	m := make(map[string]string, len(r.Definitions))
	for id, def := range r.Definitions {
		m[id] = def.File
	}
	return m
}

// ScrapeSources scans every immediate subdirectory of root. A classname conflict fails the
// whole scrape before any definition is collected.
func ScrapeSources(root string) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read source directory %s", root)
	}

	suites := map[string][]string{}
	var dirs []string
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		info, err := os.Stat(dir)
		if err != nil {
			log.WithError(err).Debugf("skipping %s", dir)
			continue
		}
		if !info.IsDir() {
			continue
		}
		files, err := goFiles(dir)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
		suites[dir] = files
	}
	sort.Strings(dirs)

	result := &Result{
		Definitions: map[string]Definition{},
		ClassNames:  map[string]string{},
	}

	for _, dir := range dirs {
		for _, f := range suites[dir] {
			classname, found, err := scrapeClassName(f)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			if existing, ok := result.ClassNames[dir]; ok && existing != classname {
				return nil, errors.Wrapf(ErrDuplicateClassName, "%s has %q, %s declares %q", dir, existing, f, classname)
			}
			result.ClassNames[dir] = classname
		}
	}

	for _, dir := range dirs {
		classname, ok := result.ClassNames[dir]
		if !ok {
			if len(suites[dir]) > 0 {
				w := Warning{Kind: NoClassName, File: dir, Message: "no classname declared, definitions dropped"}
				log.Warn(w.String())
				result.Warnings = append(result.Warnings, w)
			}
			continue
		}
		for _, f := range suites[dir] {
			warnings, err := scrapeDefinitions(f, classname, result.Definitions)
			if err != nil {
				return nil, err
			}
			result.Warnings = append(result.Warnings, warnings...)
		}
	}

	log.Infof("scraped %d test definitions from %d suites under %s", len(result.Definitions), len(result.ClassNames), root)
	return result, nil
}

func goFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read suite directory %s", dir)
	}
	var files []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			log.WithError(err).Debugf("skipping %s", path)
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	return lines, nil
}

// scrapeClassName returns the last classname declared in the file.
func scrapeClassName(path string) (string, bool, error) {
	lines, err := readLines(path)
	if err != nil {
		return "", false, err
	}
	classname, found := "", false
	for _, line := range lines {
		if v, ok := matchLine(classNamePatterns, line); ok {
			classname, found = v, true
		}
	}
	return classname, found, nil
}

func scrapeDefinitions(path, classname string, defs map[string]Definition) ([]Warning, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	desc := ""
	for ix, line := range lines {
		lineNum := ix + 1
		if v, ok := describePattern.match(line); ok {
			desc = v
		}

		it, ok := itPattern.match(line)
		if !ok {
			if _, ok := itPromiscuousPattern.match(line); ok {
				w := Warning{Kind: UnhandledCase, File: path, Line: lineNum, Text: line, Message: "unhandled It clause"}
				log.Warn(w.String())
				warnings = append(warnings, w)
			}
			continue
		}

		identity := strings.ReplaceAll(fmt.Sprintf("%s.%s %s", classname, desc, it), `\`, "")
		if org, exists := defs[identity]; exists {
			w := Warning{
				Kind:    DuplicateDefinition,
				File:    path,
				Line:    lineNum,
				Text:    line,
				Message: fmt.Sprintf("duplicate definition %q, first defined at %s:%d", identity, org.File, org.Line),
			}
			log.Warn(w.String())
			warnings = append(warnings, w)
			continue
		}
		defs[identity] = Definition{Identity: identity, File: path, Line: lineNum, Source: line}
	}
	return warnings, nil
}
