package scraper

import "regexp"

// linePattern recognizes one source idiom and names the capture group holding the text of interest.
type linePattern struct {
	name  string
	re    *regexp.Regexp
	field string
}

// match returns the captured field, or ok=false when the line is not an instance of the idiom.
func (p linePattern) match(line string) (value string, ok bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[p.re.SubexpIndex(p.field)], true
}

var (
	initTestingPattern = linePattern{
		name:  "InitTesting",
		re:    regexp.MustCompile(`^\s*k8stest.InitTesting\((?P<t>.*)\s*,\s*"(?P<classname>.*)"\s*,\s*(?P<reportname>.*)\s*\)`),
		field: "classname",
	}
	runSpecsPattern = linePattern{
		name:  "RunSpecs",
		re:    regexp.MustCompile(`^\s*ginkgo.RunSpecsWithDefaultAndCustomReporters\s*\(\s*\w\s*,\s*"(?P<classname>.*)"\s*,`),
		field: "classname",
	}
	describePattern = linePattern{
		name:  "Describe",
		re:    regexp.MustCompile(`^.*=(\s*|\s*ginkgo\.)Describe\s*\(\s*"(?P<desc>.*)"\s*,\s*func\s*\(\s*\)\s*\{`),
		field: "desc",
	}
	itPattern = linePattern{
		name:  "It",
		re:    regexp.MustCompile(`^(\s*|\s*ginkgo\.)It\s*\(\s*"(?P<it>.*)"\s*,\s*func\s*\(\s*\)\s*\{`),
		field: "it",
	}
	// itPromiscuousPattern matches It clauses whose description is an expression
	// rather than a string literal.
	itPromiscuousPattern = linePattern{
		name:  "ItPromiscuous",
		re:    regexp.MustCompile(`^(\s*|\s*ginkgo\.)It\s*\(\s*(?P<it>.*),\s*func\s*\(\s*\)\s*\{`),
		field: "it",
	}
)

// classNamePatterns are tried in order; the first to match a line wins.
var classNamePatterns = []linePattern{initTestingPattern, runSpecsPattern}

func matchLine(patterns []linePattern, line string) (value string, ok bool) {
	for _, p := range patterns {
		if v, ok := p.match(line); ok {
			return v, true
		}
	}
	return "", false
}
