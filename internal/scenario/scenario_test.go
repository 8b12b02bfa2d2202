package scenario

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
)

func TestCatalogPasses(t *testing.T) {
	r := NewRunner(logger.NewNopLogger(), 1)
	results := r.Run(context.Background(), Catalog())
	if len(results) != len(Catalog()) {
		t.Fatalf("expected %d results, got %d", len(Catalog()), len(results))
	}
	for _, res := range results {
		if !res.Passed {
			t.Errorf("%s failed: %s", res.ScenarioName, res.Reason)
		}
	}
}

func TestRunnerReportsFailures(t *testing.T) {
	scenarios := []Scenario{
		{
			Name:     "wrong expectation",
			Expected: "something else",
			Play:     func(s *engine.Session) (string, error) { return "none", nil },
			Check:    equals("something else"),
		},
		{
			Name:  "play error",
			Play:  func(s *engine.Session) (string, error) { return "", errors.New("boom") },
			Check: equals(""),
		},
	}

	r := NewRunner(logger.NewNopLogger(), 1)
	results := r.Run(context.Background(), scenarios)

	var buf bytes.Buffer
	if failed := Report(&buf, results); failed != 2 {
		t.Fatalf("expected 2 failures, got %d", failed)
	}
	if results[1].Reason != "boom" {
		t.Fatalf("expected play error as reason, got %q", results[1].Reason)
	}
	if !strings.Contains(buf.String(), "[FAIL] wrong expectation") {
		t.Fatalf("report missing failure line:\n%s", buf.String())
	}
}

func TestRunnerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewRunner(logger.NewNopLogger(), 1).Run(ctx, Catalog()); len(got) != 0 {
		t.Fatalf("cancelled run executed %d scenarios", len(got))
	}
}
