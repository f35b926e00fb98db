// Package vets is a small client for the public registries of the College of
// Veterinarians of Ontario and of British Columbia.
package vets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://cvo.ca.thentiacloud.net/rest/public"

type Client struct {
	baseURL string
	bcURL   string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bcURL:   DefaultBCURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Query narrows a registry search. Empty Status means "Active", zero Take means 10.
type Query struct {
	Name       string
	PostalCode string
	Status     string
	Take       int
	Skip       int
}

type searchRequest struct {
	SearchBy      string `json:"searchBy"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Address       string `json:"address"`
	Species       string `json:"species"`
	Language      string `json:"language"`
	SpecialtyType string `json:"specialtyType"`
	Take          int    `json:"take"`
	Skip          int    `json:"skip"`
}

// Vet is a registrant as shown in search results and details.
type Vet struct {
	ID                  string
	FirstName           string
	LastName            string
	FullName            string
	ClinicName          string
	Phone               string
	Email               string
	Address             string
	City                string
	Province            string
	PostalCode          string
	RegistrationStatus  string
	ClassOfRegistration string

	// BC registry only.
	PreferredName string
	PracticeType  string
	Specialty     string
}

// DisplayName falls back from the full name to first and last names.
func (v Vet) DisplayName() string {
	switch {
	case v.FullName != "":
		return v.FullName
	case v.FirstName != "" || v.LastName != "":
		return strings.TrimSpace(v.FirstName + " " + v.LastName)
	default:
		return "Unknown Name"
	}
}

// Location joins whichever address parts are known, or the province.
func (v Vet) Location() string {
	var parts []string
	for _, p := range []string{v.Address, v.City, v.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		if v.Province != "" {
			return v.Province
		}
		return "ON"
	}
	return strings.Join(parts, ", ")
}

type named struct {
	Name string `json:"name"`
}

type practice struct {
	Name       string `json:"name"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

type registrant struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FullName      string `json:"fullName"`
	Salutation    string `json:"salutationName"`
	Telephone1    string `json:"telephone1"`
	Email1        string `json:"email1"`
	SearchAddress *struct {
		Address    string `json:"address"`
		City       string `json:"city"`
		PostalCode string `json:"postalcode"`
	} `json:"searchaddress"`
	PrimaryPractice     *practice `json:"primarypractice"`
	RegistrationStatus  *named    `json:"registrationStatus"`
	ClassOfRegistration *named    `json:"classOfRegistration"`
}

func (r registrant) vet() Vet {
	v := Vet{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		FullName:  r.FullName,
		Phone:     r.Telephone1,
		Email:     r.Email1,
		Province:  "ON",
	}
	if v.FullName == "" {
		v.FullName = r.Salutation
	}
	if a := r.SearchAddress; a != nil {
		v.Address, v.City, v.PostalCode = a.Address, a.City, a.PostalCode
	}
	if p := r.PrimaryPractice; p != nil {
		v.ClinicName = p.Name
		if addr := strings.TrimSpace(p.Street1 + " " + p.Street2); addr != "" {
			v.Address = addr
		}
		if p.City != "" {
			v.City = p.City
		}
		if p.PostalCode != "" {
			v.PostalCode = p.PostalCode
		}
		if p.Province != "" {
			v.Province = p.Province
		}
		if p.Telephone != "" {
			v.Phone = p.Telephone
		}
		if p.Email != "" {
			v.Email = p.Email
		}
	}
	if r.RegistrationStatus != nil {
		v.RegistrationStatus = r.RegistrationStatus.Name
	}
	if r.ClassOfRegistration != nil {
		v.ClassOfRegistration = r.ClassOfRegistration.Name
	}
	return v
}

// Search looks registrants up by name and postal code. The registry answers
// with either a "result" or a "data" array; both are accepted.
func (c *Client) Search(ctx context.Context, q Query) ([]Vet, error) {
	req := searchRequest{
		SearchBy: "0",
		Name:     q.Name,
		Status:   q.Status,
		Address:  q.PostalCode,
		Take:     q.Take,
		Skip:     q.Skip,
	}
	if req.Status == "" {
		req.Status = "Active"
	}
	if req.Take == 0 {
		req.Take = 10
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/registrant/search/", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq, "CVO search")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []registrant `json:"result"`
		Data   []registrant `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse CVO search JSON: %w", err)
	}
	list := resp.Result
	if list == nil {
		list = resp.Data
	}

	vets := make([]Vet, 0, len(list))
	for _, r := range list {
		vets = append(vets, r.vet())
	}
	return vets, nil
}

// Get fetches the full record of one registrant.
func (c *Client) Get(ctx context.Context, id string) (*Vet, error) {
	u := c.baseURL + "/registrant/get/?id=" + url.QueryEscape(id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(httpReq, "CVO get")
	if err != nil {
		return nil, err
	}

	var r registrant
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse CVO registrant JSON: %w", err)
	}
	v := r.vet()
	return &v, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed (%d)", op, resp.StatusCode)
	}
	return body, nil
}
