package v1

type TestgradeConfig struct {
	Xray   XrayConfig   `yaml:"xray"`
	Jira   JiraConfig   `yaml:"jira"`
	Report ReportConfig `yaml:"report"`
}

type XrayConfig struct {
	// Project is the Jira project key used when listing issues.
	Project string `yaml:"project,omitempty"`

	// AuthURL and GraphQLURL override the Xray cloud endpoints.
	AuthURL    string `yaml:"authURL,omitempty"`
	GraphQLURL string `yaml:"graphqlURL,omitempty"`

	// PageSize is the limit requested for each page of a paginated query.
	PageSize int `yaml:"pageSize,omitempty"`
}

type JiraConfig struct {
	// URL is the Jira instance issue and run links point to.
	URL string `yaml:"url,omitempty"`
}

type ReportConfig struct {
	// TestEnvironments are assigned to test executions recorded without any.
	TestEnvironments []string `yaml:"testEnvironments,omitempty"`

	// SetupTeardown lists the last definition segments of suite setup and teardown
	// pseudo tests, BeforeSuite and AfterSuite when unset.
	SetupTeardown []string `yaml:"setupTeardown,omitempty"`

	// SampleDepth is the number of recent executions weighted by recency when grading.
	SampleDepth int `yaml:"sampleDepth,omitempty"`

	// WeightBase is the exponent of the weight of the most recent execution.
	WeightBase uint `yaml:"weightBase,omitempty"`

	// Columns limits reports to this many most recent executions.
	Columns int `yaml:"columns,omitempty"`
}
