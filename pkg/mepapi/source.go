package mepapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openparl/mep-client/pkg/client"
	"github.com/openparl/mep-client/pkg/fetch"
	"github.com/openparl/mep-client/pkg/logging"
	"github.com/rs/zerolog"
)

// directoryPath is the XML directory of all current MEPs.
const directoryPath = "/meps/en/full-list/xml"

// Source scrapes the EU Parliament website. It satisfies fetch.Source.
type Source struct {
	client *client.Client
	logger zerolog.Logger
}

// New creates a Source backed by the given HTTP client.
func New(httpClient *client.Client) *Source {
	return &Source{
		client: httpClient,
		logger: logging.NewLogger("mepapi"),
	}
}

// directory mirrors the full-list XML document.
type directory struct {
	XMLName xml.Name         `xml:"meps"`
	Entries []directoryEntry `xml:"mep"`
}

type directoryEntry struct {
	ID             string `xml:"id"`
	FullName       string `xml:"fullName"`
	Country        string `xml:"country"`
	PoliticalGroup string `xml:"politicalGroup"`
	NationalGroup  string `xml:"nationalPoliticalGroup"`
}

// EnumerateIdentifiers returns the profile URL of every current MEP, in
// directory document order.
func (s *Source) EnumerateIdentifiers(ctx context.Context) ([]string, error) {
	resp, err := s.client.Get(ctx, directoryPath)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var dir directory
	if err := xml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}

	identifiers := make([]string, 0, len(dir.Entries))
	for _, entry := range dir.Entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			s.logger.Debug().
				Str("full_name", entry.FullName).
				Msg("Skipping directory entry without id")
			continue
		}
		identifiers = append(identifiers, s.client.BaseURL()+"/meps/en/"+id)
	}

	s.logger.Debug().
		Int("count", len(identifiers)).
		Msg("Enumerated directory")

	return identifiers, nil
}

// OpenRecord constructs a record handle for one profile URL. The profile
// page itself is fetched lazily on first extraction.
func (s *Source) OpenRecord(ctx context.Context, identifier string) (fetch.RecordHandle, error) {
	u, err := url.Parse(identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", identifier, err)
	}
	if !strings.HasPrefix(u.Path, "/meps/") {
		return nil, fmt.Errorf("identifier %q is not an MEP profile URL", identifier)
	}

	return &MEP{
		url:    identifier,
		path:   u.Path,
		source: s,
	}, nil
}
