package mepapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/openparl/mep-client/pkg/fetch"
)

// MEP is a record handle for one profile page. It satisfies
// fetch.RecordHandle. The page is fetched and parsed once, on first use.
type MEP struct {
	url    string
	path   string
	source *Source

	doc    *goquery.Document
	docErr error
	loaded bool
}

// document fetches and parses the profile page on first call.
func (m *MEP) document(ctx context.Context) (*goquery.Document, error) {
	if m.loaded {
		return m.doc, m.docErr
	}
	m.loaded = true

	resp, err := m.source.client.Get(ctx, m.path)
	if err != nil {
		m.docErr = fmt.Errorf("fetch profile: %w", err)
		return nil, m.docErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.docErr = fmt.Errorf("profile request returned status %d", resp.StatusCode)
		return nil, m.docErr
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		m.docErr = fmt.Errorf("parse profile: %w", err)
		return nil, m.docErr
	}

	m.doc = doc
	return m.doc, nil
}

// PersonalData extracts the personal fields from the profile page.
// The website's schema is not ours: fields missing from the page are
// omitted from the map rather than reported as errors.
func (m *MEP) PersonalData(ctx context.Context) (map[string]string, error) {
	doc, err := m.document(ctx)
	if err != nil {
		return nil, err
	}

	data := map[string]string{}

	if name := normalizeSpace(doc.Find("span.sln-member-name").First().Text()); name != "" {
		data["full_name"] = name
	} else if name := normalizeSpace(doc.Find(".erpl_title-h1").First().Text()); name != "" {
		data["full_name"] = name
	}

	if group := normalizeSpace(doc.Find("h3.erpl_title-h3.sln-political-group-name").First().Text()); group != "" {
		data["political_group"] = group
	} else if group := normalizeSpace(doc.Find("h3.erpl_title-h3").First().Text()); group != "" {
		data["political_group"] = group
	}

	// "Ireland - Fianna Fáil (Renew Europe Group)" style line
	if line := normalizeSpace(doc.Find("div.erpl_title-h3.mt-1").First().Text()); line != "" {
		country, party := splitCountryLine(line)
		if country != "" {
			data["country"] = country
		}
		if party != "" {
			data["national_party"] = party
		}
	}

	if birthDate := normalizeSpace(doc.Find("time.sln-birth-date").First().Text()); birthDate != "" {
		data["date_of_birth"] = birthDate
	}
	if birthPlace := normalizeSpace(doc.Find("span.sln-birth-place").First().Text()); birthPlace != "" {
		data["place_of_birth"] = birthPlace
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no personal data found on profile page")
	}

	return data, nil
}

// Committees extracts committee memberships from the profile's status
// sections, in document order. Delegations and other bodies listed there
// are filtered out.
func (m *MEP) Committees(ctx context.Context) ([]fetch.Committee, error) {
	doc, err := m.document(ctx)
	if err != nil {
		return nil, err
	}

	committees := []fetch.Committee{}

	doc.Find("div.erpl_meps-status").Each(func(_ int, section *goquery.Selection) {
		role := normalizeSpace(section.Find("h4.erpl_title-h4").First().Text())
		if role == "" {
			return
		}

		section.Find("ul li a, ul li").Each(func(_ int, item *goquery.Selection) {
			// Nested selector may visit both the li and its anchor;
			// anchors carry the canonical name
			if item.Is("li") && item.Find("a").Length() > 0 {
				return
			}

			name := normalizeSpace(item.Text())
			if !isCommitteeName(name) {
				return
			}
			committees = append(committees, fetch.Committee{
				Name: name,
				Role: role,
			})
		})
	})

	return committees, nil
}

// Serialize returns the full JSON-compatible representation of the record.
func (m *MEP) Serialize(ctx context.Context) (map[string]any, error) {
	personal, err := m.PersonalData(ctx)
	if err != nil {
		return nil, err
	}

	committees, err := m.Committees(ctx)
	if err != nil {
		return nil, err
	}

	committeeList := make([]any, 0, len(committees))
	for _, c := range committees {
		committeeList = append(committeeList, map[string]any{
			"name": c.Name,
			"role": c.Role,
		})
	}

	personalData := make(map[string]any, len(personal))
	for k, v := range personal {
		personalData[k] = v
	}

	return map[string]any{
		"url":           m.url,
		"personal_data": personalData,
		"committees":    committeeList,
	}, nil
}

// isCommitteeName reports whether a status entry names a parliamentary
// committee rather than a delegation or other body.
func isCommitteeName(name string) bool {
	return strings.HasPrefix(name, "Committee ") ||
		strings.HasPrefix(name, "Subcommittee ") ||
		strings.HasPrefix(name, "Special Committee ")
}
