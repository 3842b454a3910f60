package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeHandle is a scripted RecordHandle.
type fakeHandle struct {
	identifier string
	personal   map[string]string
	committees []Committee
	raw        map[string]any

	personalErr   error
	committeesErr error
	serializeErr  error
}

func (h *fakeHandle) PersonalData(ctx context.Context) (map[string]string, error) {
	return h.personal, h.personalErr
}

func (h *fakeHandle) Committees(ctx context.Context) ([]Committee, error) {
	return h.committees, h.committeesErr
}

func (h *fakeHandle) Serialize(ctx context.Context) (map[string]any, error) {
	return h.raw, h.serializeErr
}

// fakeSource is a scripted Source simulating enumeration and per-record
// failures deterministically.
type fakeSource struct {
	identifiers  []string
	enumerateErr error

	openErr map[string]error // per-identifier open failures
	handles map[string]*fakeHandle

	opened []string // records OpenRecord call order
}

func (s *fakeSource) EnumerateIdentifiers(ctx context.Context) ([]string, error) {
	if s.enumerateErr != nil {
		return nil, s.enumerateErr
	}
	return s.identifiers, nil
}

func (s *fakeSource) OpenRecord(ctx context.Context, identifier string) (RecordHandle, error) {
	s.opened = append(s.opened, identifier)

	if err, ok := s.openErr[identifier]; ok {
		return nil, err
	}
	if handle, ok := s.handles[identifier]; ok {
		return handle, nil
	}

	// Default healthy handle
	return &fakeHandle{
		identifier: identifier,
		personal:   map[string]string{"full_name": "MEP " + identifier},
		committees: []Committee{{Name: "Committee on Budgets", Role: "Member"}},
		raw:        map[string]any{"identifier": identifier},
	}, nil
}

func identifiers(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("https://www.europarl.europa.eu/meps/en/%d", 100000+i)
	}
	return ids
}

func TestRun_AllSucceed(t *testing.T) {
	// Scenario: 3 identifiers, all fetches succeed
	source := &fakeSource{identifiers: identifiers(3)}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if !result.Success {
		t.Fatalf("Success = false, want true (error: %s)", result.Error)
	}
	if result.TotalIdentifiersFound != 3 {
		t.Errorf("TotalIdentifiersFound = %d, want 3", result.TotalIdentifiersFound)
	}
	if result.SampleProcessed != 3 {
		t.Errorf("SampleProcessed = %d, want 3", result.SampleProcessed)
	}
	if len(result.SampleData) != 3 {
		t.Fatalf("len(SampleData) = %d, want 3", len(result.SampleData))
	}

	// Order preserved
	for i, record := range result.SampleData {
		if record.Identifier != source.identifiers[i] {
			t.Errorf("SampleData[%d].Identifier = %q, want %q",
				i, record.Identifier, source.identifiers[i])
		}
	}
}

func TestRun_SampleCap(t *testing.T) {
	// 15 identifiers: only the first 10 are processed, in order
	source := &fakeSource{identifiers: identifiers(15)}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if result.TotalIdentifiersFound != 15 {
		t.Errorf("TotalIdentifiersFound = %d, want 15", result.TotalIdentifiersFound)
	}
	if result.SampleProcessed != SampleCap {
		t.Errorf("SampleProcessed = %d, want %d", result.SampleProcessed, SampleCap)
	}
	if len(source.opened) != SampleCap {
		t.Errorf("OpenRecord calls = %d, want %d", len(source.opened), SampleCap)
	}
	for i, identifier := range source.opened {
		if identifier != source.identifiers[i] {
			t.Errorf("opened[%d] = %q, want prefix order", i, identifier)
		}
	}
}

func TestRun_PerRecordFailureIsSkipped(t *testing.T) {
	// Scenario: 15 identifiers, the 4th selected record fails, rest succeed
	ids := identifiers(15)
	source := &fakeSource{
		identifiers: ids,
		openErr:     map[string]error{ids[3]: errors.New("profile page returned 500")},
	}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if !result.Success {
		t.Fatal("Per-record failure must not flip Success")
	}
	if result.SampleProcessed != 9 {
		t.Errorf("SampleProcessed = %d, want 9", result.SampleProcessed)
	}
	if len(result.SampleData) != 9 {
		t.Fatalf("len(SampleData) = %d, want 9", len(result.SampleData))
	}

	// The failed identifier is omitted, not replaced; relative order holds
	want := append(append([]string{}, ids[:3]...), ids[4:10]...)
	for i, record := range result.SampleData {
		if record.Identifier != want[i] {
			t.Errorf("SampleData[%d].Identifier = %q, want %q", i, record.Identifier, want[i])
		}
	}
}

func TestRun_ExtractionFailuresAreSkipped(t *testing.T) {
	ids := identifiers(3)

	tests := []struct {
		name   string
		handle *fakeHandle
	}{
		{
			name:   "personal data fails",
			handle: &fakeHandle{personalErr: errors.New("selector matched nothing")},
		},
		{
			name:   "committees fail",
			handle: &fakeHandle{committeesErr: errors.New("status section missing")},
		},
		{
			name:   "serialize fails",
			handle: &fakeHandle{serializeErr: errors.New("marshal failure")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{
				identifiers: ids,
				handles:     map[string]*fakeHandle{ids[1]: tt.handle},
			}
			orch := NewOrchestrator(source)

			result := orch.Run(context.Background())

			if !result.Success {
				t.Fatal("Extraction failure must not flip Success")
			}
			if result.SampleProcessed != 2 {
				t.Errorf("SampleProcessed = %d, want 2", result.SampleProcessed)
			}
			for _, record := range result.SampleData {
				if record.Identifier == ids[1] {
					t.Error("Failed record must be omitted from SampleData")
				}
			}
		})
	}
}

func TestRun_AllRecordsFail(t *testing.T) {
	// A fully failing sample still yields a successful run
	ids := identifiers(3)
	openErr := make(map[string]error, len(ids))
	for _, id := range ids {
		openErr[id] = errors.New("unreachable")
	}
	source := &fakeSource{identifiers: ids, openErr: openErr}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if !result.Success {
		t.Error("Success = false, want true when only per-record fetches fail")
	}
	if result.SampleProcessed != 0 {
		t.Errorf("SampleProcessed = %d, want 0", result.SampleProcessed)
	}
	if len(result.SampleData) != 0 {
		t.Errorf("len(SampleData) = %d, want 0", len(result.SampleData))
	}
	if result.TotalIdentifiersFound != 3 {
		t.Errorf("TotalIdentifiersFound = %d, want 3", result.TotalIdentifiersFound)
	}
}

func TestRun_EnumerationError(t *testing.T) {
	// Scenario: enumeration raises a timeout-like error
	source := &fakeSource{enumerateErr: errors.New("context deadline exceeded")}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if result.Success {
		t.Error("Success = true, want false on enumeration failure")
	}
	if result.Error != "context deadline exceeded" {
		t.Errorf("Error = %q, want propagated message", result.Error)
	}
	if len(source.opened) != 0 {
		t.Error("No records may be processed after enumeration failure")
	}
	if result.SampleData != nil {
		t.Error("SampleData must be absent on enumeration failure")
	}
}

func TestRun_EmptyEnumeration(t *testing.T) {
	source := &fakeSource{identifiers: nil}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if result.Success {
		t.Error("Success = true, want false for empty enumeration")
	}
	if result.Error == "" {
		t.Error("Error must be non-empty for empty enumeration")
	}
	if len(source.opened) != 0 {
		t.Error("No records may be processed for empty enumeration")
	}
}

func TestRun_RecordContents(t *testing.T) {
	ids := identifiers(1)
	source := &fakeSource{
		identifiers: ids,
		handles: map[string]*fakeHandle{
			ids[0]: {
				personal: map[string]string{
					"full_name":       "Jane Doe",
					"country":         "Ireland",
					"political_group": "Renew Europe Group",
				},
				committees: []Committee{
					{Name: "Committee on Budgets", Role: "Member"},
					{Name: "Committee on Fisheries", Role: "Substitute"},
				},
				raw: map[string]any{"id": "100000"},
			},
		},
	}
	orch := NewOrchestrator(source)

	result := orch.Run(context.Background())

	if len(result.SampleData) != 1 {
		t.Fatalf("len(SampleData) = %d, want 1", len(result.SampleData))
	}

	record := result.SampleData[0]
	if record.PersonalData["full_name"] != "Jane Doe" {
		t.Errorf("PersonalData[full_name] = %q", record.PersonalData["full_name"])
	}
	if len(record.Committees) != 2 || record.Committees[1].Role != "Substitute" {
		t.Errorf("Committees = %+v", record.Committees)
	}
	if record.Raw["id"] != "100000" {
		t.Errorf("Raw[id] = %v", record.Raw["id"])
	}
}
