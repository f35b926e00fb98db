package vets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultBCURL is the College of Veterinarians of British Columbia lookup page.
const DefaultBCURL = "https://www.cvbc.ca/registrant-lookup-results/"

// WithBC points BC searches at u instead of DefaultBCURL.
func (c *Client) WithBC(u string) *Client {
	if u != "" {
		c.bcURL = u
	}
	return c
}

// SearchBC looks registrants up in the BC registry by first name. The
// registry has no API, so the result table of the lookup page is scraped.
// Rows with fewer than seven cells are skipped.
func (c *Client) SearchBC(ctx context.Context, name string) ([]Vet, error) {
	q := url.Values{}
	q.Set("lastname", "")
	q.Set("firstname", name)
	q.Set("preferredname", "")
	q.Set("specialty", "")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bcURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(httpReq, "CVBC search")
	if err != nil {
		return nil, err
	}
	return parseBCTable(bytes.NewReader(body))
}

func parseBCTable(r io.Reader) ([]Vet, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CVBC page: %w", err)
	}

	var vets []Vet
	for _, row := range bodyRows(doc) {
		cells := cellTexts(row)
		if len(cells) < 7 {
			continue
		}
		full := orUnknown(cells[0])
		vets = append(vets, Vet{
			ID:                  "bc-" + strings.ToLower(strings.Join(strings.Fields(full), "-")),
			FullName:            full,
			PreferredName:       cells[1],
			PracticeType:        orUnknown(cells[2]),
			RegistrationStatus:  orUnknown(cells[3]),
			ClassOfRegistration: orDefaultString(cells[4], "Veterinarian"),
			Specialty:           cells[5],
			Province:            "BC",
		})
	}
	return vets, nil
}

// bodyRows returns every tr that sits inside a tbody of a table.
func bodyRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node, inTable, inBody bool)
	walk = func(n *html.Node, inTable, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				inTable, inBody = true, false
			case atom.Tbody:
				inBody = inTable
			case atom.Tr:
				if inBody {
					rows = append(rows, n)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTable, inBody)
		}
	}
	walk(n, false, false)
	return rows
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, strings.Join(strings.Fields(textOf(c)), " "))
		}
	}
	return cells
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
		b.WriteByte(' ')
	}
	return b.String()
}

func orUnknown(s string) string {
	return orDefaultString(s, "Unknown")
}

func orDefaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
