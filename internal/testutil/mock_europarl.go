// Package testutil provides testing utilities for the MEP client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockParliament is a configurable mock of the EU Parliament website.
type MockParliament struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
}

// NewMockParliament creates a new mock Parliament website server.
func NewMockParliament() *MockParliament {
	mock := &MockParliament{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		// Track conditional requests
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.ConditionalCount++
		}
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockParliament) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockParliament) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockParliament) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockParliament) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests received.
func (m *MockParliament) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockParliament) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockParliament) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		// Set headers
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		// Write status and body
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// DirectoryMEP is one entry of the full-list XML directory fixture.
type DirectoryMEP struct {
	ID             string
	FullName       string
	Country        string
	PoliticalGroup string
	NationalGroup  string
}

// SetDirectory serves a full-list XML directory with the given entries.
func (m *MockParliament) SetDirectory(entries []DirectoryMEP) {
	m.SetResponse("/meps/en/full-list/xml", MockResponse{
		StatusCode: http.StatusOK,
		Body:       DirectoryXML(entries),
		Headers: map[string]string{
			"Content-Type": "text/xml; charset=utf-8",
		},
	})
}

// DirectoryXML renders a full-list XML document.
func DirectoryXML(entries []DirectoryMEP) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<meps>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  <mep>\n")
		fmt.Fprintf(&b, "    <fullName>%s</fullName>\n", e.FullName)
		fmt.Fprintf(&b, "    <country>%s</country>\n", e.Country)
		fmt.Fprintf(&b, "    <politicalGroup>%s</politicalGroup>\n", e.PoliticalGroup)
		fmt.Fprintf(&b, "    <id>%s</id>\n", e.ID)
		fmt.Fprintf(&b, "    <nationalPoliticalGroup>%s</nationalPoliticalGroup>\n", e.NationalGroup)
		fmt.Fprintf(&b, "  </mep>\n")
	}
	b.WriteString("</meps>\n")
	return b.String()
}

// CommitteeMembership is one committee entry of a profile fixture.
type CommitteeMembership struct {
	Role string
	Name string
}

// ProfileFixture describes an MEP profile page fixture.
type ProfileFixture struct {
	FullName       string
	PoliticalGroup string
	Country        string
	NationalParty  string
	Committees     []CommitteeMembership
}

// SetProfile serves a profile page for the given MEP id.
func (m *MockParliament) SetProfile(id string, p ProfileFixture) {
	m.SetResponse("/meps/en/"+id, MockResponse{
		StatusCode: http.StatusOK,
		Body:       ProfileHTML(p),
		Headers: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
		},
	})
}

// ProfileHTML renders profile page markup in the website's structure.
func ProfileHTML(p ProfileFixture) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	b.WriteString(`<div id="presentationmep">` + "\n")
	fmt.Fprintf(&b, `  <div class="erpl_title-h1"><span class="sln-member-name">%s</span></div>`+"\n", p.FullName)
	fmt.Fprintf(&b, `  <h3 class="erpl_title-h3 sln-political-group-name">%s</h3>`+"\n", p.PoliticalGroup)

	countryLine := p.Country
	if p.NationalParty != "" {
		countryLine += " - " + p.NationalParty
	}
	fmt.Fprintf(&b, `  <div class="erpl_title-h3 mt-1">%s</div>`+"\n", countryLine)
	b.WriteString("</div>\n")

	// Status sections grouped by role, preserving fixture order
	var roles []string
	byRole := map[string][]string{}
	for _, c := range p.Committees {
		if _, seen := byRole[c.Role]; !seen {
			roles = append(roles, c.Role)
		}
		byRole[c.Role] = append(byRole[c.Role], c.Name)
	}

	for _, role := range roles {
		b.WriteString(`<div class="erpl_meps-status">` + "\n")
		fmt.Fprintf(&b, `  <h4 class="erpl_title-h4">%s</h4>`+"\n", role)
		b.WriteString("  <ul>\n")
		for _, name := range byRole[role] {
			fmt.Fprintf(&b, `    <li><a href="#">%s</a></li>`+"\n", name)
		}
		b.WriteString("  </ul>\n</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
