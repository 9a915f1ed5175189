package xrayclient

import "strings"

const listTestsQuery = `
ListTests($limit: Int!, $start: Int!, $jql: String!) {
    getTests(jql: $jql, limit: $limit, start: $start) {
        total
        start
        limit
        results {
            issueId
            jira(fields: ["key", "summary", "status"])
            unstructured
            testSets(limit: 10, start: 0) {
                results {
                    jira(fields: ["key"])
                }
            }
            testPlans(limit: 10, start: 0) {
                results {
                    jira(fields: ["key"])
                }
            }
            testRuns(limit: 10, start: 0) {
                results {
                    finishedOn
                }
            }
        }
    }
}`

const getTestQuery = `
GetTest($issueId: String!) {
    getTest(issueId: $issueId) {
        issueId
        jira(fields: ["key", "summary", "status"])
        unstructured
        testSets(limit: 10, start: 0) {
            results {
                issueId
                jira(fields: ["key"])
            }
        }
    }
}`

const listTestPlansQuery = `
ListTestPlans($limit: Int!, $start: Int!, $jql: String!) {
    getTestPlans(jql: $jql, limit: $limit, start: $start) {
        total
        start
        limit
        results {
            issueId
            jira(fields: ["key", "summary", "description"])
        }
    }
}`

const getTestsInTestPlanQuery = `
GetTestsInTestPlan($limit: Int!, $start: Int!, $issueId: String!) {
    getTestPlan(issueId: $issueId) {
        issueId
        tests(limit: $limit, start: $start) {
            total
            start
            limit
            results {
                issueId
                unstructured
                jira(fields: ["key", "summary"])
            }
        }
    }
}`

const getTestExecutionsInTestPlanQuery = `
GetTestExecutionsInTestPlan($limit: Int!, $start: Int!, $issueId: String!) {
    getTestPlan(issueId: $issueId) {
        issueId
        testExecutions(limit: $limit, start: $start) {
            total
            start
            limit
            results {
                issueId
                jira(fields: ["key", "summary"])
                lastModified
                testEnvironments
            }
        }
    }
}`

const listTestSetsQuery = `
ListTestSets($limit: Int!, $start: Int!, $jql: String!) {
    getTestSets(jql: $jql, limit: $limit, start: $start) {
        total
        start
        limit
        results {
            issueId
            jira(fields: ["key", "summary"])
        }
    }
}`

const getTestsInTestSetQuery = `
GetTestsInTestSet($limit: Int!, $start: Int!, $issueId: String!) {
    getTestSet(issueId: $issueId) {
        issueId
        tests(limit: $limit, start: $start) {
            total
            start
            limit
            results {
                issueId
                unstructured
                jira(fields: ["key", "summary"])
            }
        }
    }
}`

const listTestExecutionsQuery = `
ListTestExecutions($limit: Int!, $start: Int!, $jql: String!) {
    getTestExecutions(jql: $jql, limit: $limit, start: $start) {
        total
        start
        limit
        results {
            issueId
            jira(fields: ["key", "summary"])
            testEnvironments
        }
    }
}`

const getTestExecutionRunsQuery = `
GetTestExecutionRuns($limit: Int!, $start: Int!, $issueId: String!) {
    getTestExecution(issueId: $issueId) {
        issueId
        testRuns(limit: $limit, start: $start) {
            total
            start
            limit
            results {
                id
                unstructured
                finishedOn
                status {
                    name
                }
                test {
                    jira(fields: ["key", "summary"])
                }
                results {
                    log
                }
            }
        }
    }
}`

const getTestRunsQuery = `
GetTestRuns($limit: Int!, $start: Int!, $issueId: String!) {
    getTest(issueId: $issueId) {
        issueId
        testRuns(limit: $limit, start: $start) {
            total
            start
            limit
            results {
                id
                unstructured
                finishedOn
                status {
                    name
                    description
                }
                test {
                    jira(fields: ["key", "summary"])
                }
                results {
                    log
                }
            }
        }
    }
}`

const getTestRunResultQuery = `
GetTestRunResult($id: String!) {
    getTestRunById(id: $id) {
        results {
            log
        }
    }
}`

// operationName is the name declared at the start of a query text.
func operationName(text string) (string, bool) {
	text = strings.TrimSpace(text)
	end := strings.IndexAny(text, "( {\n")
	if end == 0 {
		return "", false
	}
	if end < 0 {
		end = len(text)
	}
	return text[:end], text != ""
}
