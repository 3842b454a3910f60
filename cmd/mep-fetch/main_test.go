package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/openparl/mep-client/internal/testutil"
	"github.com/openparl/mep-client/pkg/fetch"
	"github.com/openparl/mep-client/pkg/logging"
)

func TestGetEnv(t *testing.T) {
	t.Run("unset returns default", func(t *testing.T) {
		if got := getEnv("MEP_FETCH_TEST_UNSET", "fallback"); got != "fallback" {
			t.Errorf("Expected fallback, got %q", got)
		}
	})

	t.Run("set returns value", func(t *testing.T) {
		t.Setenv("MEP_FETCH_TEST_SET", "value")
		if got := getEnv("MEP_FETCH_TEST_SET", "fallback"); got != "value" {
			t.Errorf("Expected value, got %q", got)
		}
	})

	t.Run("empty returns default", func(t *testing.T) {
		t.Setenv("MEP_FETCH_TEST_EMPTY", "")
		if got := getEnv("MEP_FETCH_TEST_EMPTY", "fallback"); got != "fallback" {
			t.Errorf("Expected fallback, got %q", got)
		}
	})
}

func TestRunFetch(t *testing.T) {
	mock := testutil.NewMockParliament()
	defer mock.Close()

	mock.SetDirectory([]testutil.DirectoryMEP{
		{ID: "124936", FullName: "Magdalena ADAMOWICZ"},
		{ID: "197490", FullName: "Alex AGIUS SALIBA"},
	})
	profile := testutil.ProfileFixture{
		FullName:       "Magdalena ADAMOWICZ",
		PoliticalGroup: "Group of the European People's Party",
		Country:        "Poland",
		Committees: []testutil.CommitteeMembership{
			{Role: "Member", Name: "Committee on Transport and Tourism"},
		},
	}
	mock.SetProfile("124936", profile)
	mock.SetProfile("197490", profile)

	logger := logging.NewLogger("test")
	result := runFetch(context.Background(), runConfig{
		BaseURL:   mock.URL(),
		UserAgent: "mep-fetch-test/1.0 (dev@example.org)",
	}, logger)

	if !result.Success {
		t.Fatalf("Expected successful run, got error: %s", result.Error)
	}
	if result.TotalIdentifiersFound != 2 {
		t.Errorf("Expected 2 identifiers, got %d", result.TotalIdentifiersFound)
	}
	if result.SampleProcessed != 2 {
		t.Errorf("Expected 2 processed records, got %d", result.SampleProcessed)
	}
}

func TestRunFetch_DirectoryUnavailable(t *testing.T) {
	mock := testutil.NewMockParliament()
	defer mock.Close()

	logger := logging.NewLogger("test")
	result := runFetch(context.Background(), runConfig{
		BaseURL:   mock.URL(),
		UserAgent: "mep-fetch-test/1.0 (dev@example.org)",
	}, logger)

	if result.Success {
		t.Fatal("Expected failed run for unavailable directory")
	}
	if result.Error == "" {
		t.Error("Expected error message in result")
	}
}

func TestRunFetch_InvalidClientConfig(t *testing.T) {
	logger := logging.NewLogger("test")
	result := runFetch(context.Background(), runConfig{}, logger)

	if result.Success {
		t.Fatal("Expected failure for missing user agent")
	}
	if !strings.Contains(result.Error, "user-agent") {
		t.Errorf("Expected user-agent error, got: %s", result.Error)
	}
}

func TestReportOutput(t *testing.T) {
	mock := testutil.NewMockParliament()
	defer mock.Close()

	mock.SetDirectory([]testutil.DirectoryMEP{
		{ID: "124936", FullName: "Magdalena ADAMOWICZ"},
	})
	mock.SetProfile("124936", testutil.ProfileFixture{
		FullName:       "Magdalena ADAMOWICZ",
		PoliticalGroup: "Group of the European People's Party",
		Country:        "Poland",
	})

	logger := logging.NewLogger("test")
	result := runFetch(context.Background(), runConfig{
		BaseURL:   mock.URL(),
		UserAgent: "mep-fetch-test/1.0 (dev@example.org)",
	}, logger)

	var buf bytes.Buffer
	if err := fetch.WriteReport(&buf, result); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "RESULT:") {
		t.Error("Expected RESULT: marker in report output")
	}

	jsonPart := out[strings.Index(out, "RESULT:")+len("RESULT:"):]
	var parsed map[string]any
	if err := json.Unmarshal([]byte(jsonPart), &parsed); err != nil {
		t.Fatalf("Report JSON does not parse: %v", err)
	}
	if parsed["success"] != true {
		t.Errorf("Expected success=true in report, got %v", parsed["success"])
	}
}
