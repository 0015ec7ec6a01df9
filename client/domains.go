package client

import (
	"context"
	"net/url"
)

// DomainService manages tenant domains. All of its endpoints sit behind the
// server's admin key, so construct the client with that key rather than a
// domain key.
type DomainService struct {
	c *Client
}

// domainListResponse wraps the domain list response.
type domainListResponse struct {
	Domains []Domain `json:"domains"`
	Count   int      `json:"count"`
}

// Create provisions a new domain and returns it together with its API key.
// The key is shown exactly once; store it, because only its hash survives
// server side.
func (s *DomainService) Create(ctx context.Context, name string) (*DomainWithKey, error) {
	var dom DomainWithKey
	req := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := s.c.post(ctx, "/api/v1/admin/domains", &req, &dom); err != nil {
		return nil, err
	}
	return &dom, nil
}

// List returns all domains, active and not.
func (s *DomainService) List(ctx context.Context) ([]Domain, error) {
	var resp domainListResponse
	if err := s.c.get(ctx, "/api/v1/admin/domains", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Domains, nil
}

// Get returns a single domain by ID.
func (s *DomainService) Get(ctx context.Context, id string) (*Domain, error) {
	var dom Domain
	if err := s.c.get(ctx, "/api/v1/admin/domains/"+url.PathEscape(id), nil, &dom); err != nil {
		return nil, err
	}
	return &dom, nil
}

// Update renames or (de)activates a domain. Keys of a deactivated domain
// stop authenticating until it is reactivated.
func (s *DomainService) Update(ctx context.Context, id string, req *UpdateDomainRequest) (*Domain, error) {
	var dom Domain
	if _, err := s.c.put(ctx, "/api/v1/admin/domains/"+url.PathEscape(id), req, &dom); err != nil {
		return nil, err
	}
	return &dom, nil
}

// RotateKey replaces a domain's API key. The old key stops working
// immediately; the new one is returned exactly once.
func (s *DomainService) RotateKey(ctx context.Context, id string) (*DomainWithKey, error) {
	var dom DomainWithKey
	if err := s.c.post(ctx, "/api/v1/admin/domains/"+url.PathEscape(id)+"/rotate", nil, &dom); err != nil {
		return nil, err
	}
	return &dom, nil
}

// Delete removes a domain and every record it owns.
func (s *DomainService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/api/v1/admin/domains/"+url.PathEscape(id), nil, nil)
}
