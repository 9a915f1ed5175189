package generichtml

const (
	// HTMLPageStart takes the page title twice, for the title element and the heading.
	HTMLPageStart = `
<!DOCTYPE html>

<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="description" content="E2E test results.">
  <meta name="author" content="testgrade">

  <title>%s</title>

  <style>
  table, th {
  border: 2px solid white;
  border-collapse: collapse;
  }
  th {
  background-color: #96D4D4;
  font-weight: normal;
  padding: 3px;
  }
  td {
  border: 1px solid white;
  border-collapse: separate;
  border-radius: 5px;
  }
  a {
  text-decoration: none;
  }
  body {
    background-color: #d4d4d4;
  }
  </style>
</head>
<body>
<h1>%s</h1>
`

	// HTMLPageEnd takes the generation time.
	HTMLPageEnd = `
<p>Generated: %s</p>
</body>
</html>
`
)
