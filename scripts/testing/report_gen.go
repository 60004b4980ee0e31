// Copyright 2026 The BugTrail Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// report_gen merges `go test -json` output with the TestPurpose
// annotations in the _test.go sources and emits a JSON and a Markdown
// test report.
//
// Usage:
//
//	go test -json ./... > /tmp/raw.json
//	go run scripts/testing/report_gen.go -input /tmp/raw.json -out-json report.json -out-md report.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestAnnotations holds the structured comment block above a test.
type TestAnnotations struct {
	Purpose    string `json:"purpose,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Security   string `json:"security,omitempty"`
	Expected   string `json:"expected,omitempty"`
	TestCaseID string `json:"test_case_id,omitempty"`
}

// TestResult is one test's outcome merged with its annotations.
type TestResult struct {
	Name        string          `json:"name"`
	Package     string          `json:"package"`
	Status      string          `json:"status"`
	Elapsed     float64         `json:"elapsed_seconds"`
	Annotations TestAnnotations `json:"annotations"`
}

// Report is the full document written to disk.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Total       int          `json:"total"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Results     []TestResult `json:"results"`
}

// testEvent is one line of `go test -json` output.
type testEvent struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
}

func main() {
	inputPath := flag.String("input", "", "path to go test -json output")
	outJSON := flag.String("out-json", "test-report.json", "path for the JSON report")
	outMD := flag.String("out-md", "test-report.md", "path for the Markdown report")
	root := flag.String("root", ".", "repository root to scan for annotations")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: report_gen -input <go-test-json> [-out-json f] [-out-md f]")
		os.Exit(1)
	}

	annotations := scanAnnotations(*root)
	results, err := parseResults(*inputPath, annotations)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to parse test output:", err)
		os.Exit(1)
	}

	report := Report{GeneratedAt: time.Now(), Total: len(results), Results: results}
	for _, r := range results {
		switch r.Status {
		case "pass":
			report.Passed++
		case "fail":
			report.Failed++
		case "skip":
			report.Skipped++
		}
	}

	if err := writeJSON(*outJSON, report); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write JSON report:", err)
		os.Exit(1)
	}
	if err := writeMarkdown(*outMD, report); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write Markdown report:", err)
		os.Exit(1)
	}

	fmt.Printf("report: %d tests, %d passed, %d failed, %d skipped\n",
		report.Total, report.Passed, report.Failed, report.Skipped)
}

// scanAnnotations walks the tree and extracts the comment block above
// every Test* function.
func scanAnnotations(root string) map[string]TestAnnotations {
	out := make(map[string]TestAnnotations)
	fset := token.NewFileSet()

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Doc == nil || !strings.HasPrefix(fn.Name.Name, "Test") {
				continue
			}
			out[fn.Name.Name] = parseAnnotations(fn.Doc.Text())
		}
		return nil
	})

	return out
}

func parseAnnotations(doc string) TestAnnotations {
	var a TestAnnotations
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "TestPurpose:"):
			a.Purpose = strings.TrimSpace(strings.TrimPrefix(line, "TestPurpose:"))
		case strings.HasPrefix(line, "Scope:"):
			a.Scope = strings.TrimSpace(strings.TrimPrefix(line, "Scope:"))
		case strings.HasPrefix(line, "Security:"):
			a.Security = strings.TrimSpace(strings.TrimPrefix(line, "Security:"))
		case strings.HasPrefix(line, "Expected:"):
			a.Expected = strings.TrimSpace(strings.TrimPrefix(line, "Expected:"))
		case strings.HasPrefix(line, "Test Case ID:"):
			a.TestCaseID = strings.TrimSpace(strings.TrimPrefix(line, "Test Case ID:"))
		}
	}
	return a
}

// parseResults reads go test -json output, keeping the terminal event per
// test. Subtests are folded into their parent's name.
func parseResults(path string, annotations map[string]TestAnnotations) ([]TestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results := make(map[string]TestResult)
	order := []string{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var ev testEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Test == "" {
			continue
		}
		if ev.Action != "pass" && ev.Action != "fail" && ev.Action != "skip" {
			continue
		}

		key := ev.Package + "." + ev.Test
		if _, seen := results[key]; !seen {
			order = append(order, key)
		}
		topLevel := ev.Test
		if i := strings.Index(topLevel, "/"); i > 0 {
			topLevel = topLevel[:i]
		}
		results[key] = TestResult{
			Name:        ev.Test,
			Package:     ev.Package,
			Status:      ev.Action,
			Elapsed:     ev.Elapsed,
			Annotations: annotations[topLevel],
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]TestResult, 0, len(order))
	for _, key := range order {
		out = append(out, results[key])
	}
	return out, nil
}

func writeJSON(path string, report Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeMarkdown(path string, report Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# BugTrail Test Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Total:** %d · **Passed:** %d · **Failed:** %d · **Skipped:** %d\n\n",
		report.Total, report.Passed, report.Failed, report.Skipped)

	fmt.Fprintf(&b, "| Status | Test | Case ID | Purpose |\n")
	fmt.Fprintf(&b, "|--------|------|---------|--------|\n")
	for _, r := range report.Results {
		icon := "✅"
		switch r.Status {
		case "fail":
			icon = "❌"
		case "skip":
			icon = "⏭️"
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n",
			icon, r.Name, r.Annotations.TestCaseID, r.Annotations.Purpose)
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
