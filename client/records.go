package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// RecordService handles CRUD, query and export operations for one record
// collection. T is the record type and R its create/replace payload.
type RecordService[T, R any] struct {
	c    *Client
	path string
}

// bulkResponse wraps the response from bulk creates.
type bulkResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// Create inserts one record into the caller's domain.
func (s *RecordService[T, R]) Create(ctx context.Context, req *R) (*T, error) {
	var rec T
	if err := s.c.post(ctx, s.path, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// BulkCreate inserts up to 1000 records in one transaction. Either all of
// them land or none do.
func (s *RecordService[T, R]) BulkCreate(ctx context.Context, reqs []R) ([]T, error) {
	var resp bulkResponse[T]
	if err := s.c.post(ctx, s.path+"/bulk", reqs, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Get returns a single record by ID. IDs are accepted dashed or as plain
// 32-character hex.
func (s *RecordService[T, R]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := s.c.get(ctx, s.path+"/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Replace overwrites a record by ID. The returned bool reports whether any
// stored value actually changed, mirroring the X-Record-Changed header.
func (s *RecordService[T, R]) Replace(ctx context.Context, id string, req *R) (*T, bool, error) {
	var rec T
	header, err := s.c.put(ctx, s.path+"/"+url.PathEscape(id), req, &rec)
	if err != nil {
		return nil, false, err
	}
	changed := header.Get("X-Record-Changed") == "true"
	return &rec, changed, nil
}

// Delete removes a record by ID.
func (s *RecordService[T, R]) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, s.path+"/"+url.PathEscape(id), nil, nil)
}

// Query runs a filtered, sorted, paginated query. A nil request returns
// everything in primary-key order.
func (s *RecordService[T, R]) Query(ctx context.Context, q *QueryRequest) (*Page[T], error) {
	if q == nil {
		q = &QueryRequest{}
	}
	var items []T
	header, err := s.c.postHeaders(ctx, s.path+"/query", q, &items)
	if err != nil {
		return nil, err
	}
	return pageFrom(items, header), nil
}

// List returns one page of records in primary-key order. A length of 0
// falls back to the server default of 50 per page.
func (s *RecordService[T, R]) List(ctx context.Context, page, length int) (*Page[T], error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if length > 0 {
		params.Set("length", strconv.Itoa(length))
	}
	var items []T
	header, err := s.c.getHeaders(ctx, s.path, params, &items)
	if err != nil {
		return nil, err
	}
	return pageFrom(items, header), nil
}

// Neighbors returns the anchor record plus cursors for the records on either
// side of it under the query's ordering and filters. An anchor that fell out
// of the filtered set leaves both cursors empty.
func (s *RecordService[T, R]) Neighbors(ctx context.Context, id string, q *QueryRequest) (*T, *Neighbors, error) {
	req := neighborRequest{ID: id}
	if q != nil {
		req.QueryRequest = *q
	}
	var rec T
	header, err := s.c.postHeaders(ctx, s.path+"/neighbors", &req, &rec)
	if err != nil {
		return nil, nil, err
	}
	nb := &Neighbors{
		Next:     header.Get("X-Next-Cursor"),
		Previous: header.Get("X-Previous-Cursor"),
	}
	return &rec, nb, nil
}

// Export renders the query's full result set as a file. Format is "csv" or
// "xlsx"; pagination in q is ignored by the server.
func (s *RecordService[T, R]) Export(ctx context.Context, format string, q *QueryRequest) (*ExportResult, error) {
	if q == nil {
		q = &QueryRequest{}
	}
	path := s.path + "/export?format=" + url.QueryEscape(format)
	data, header, err := s.c.doBytes(ctx, http.MethodPost, path, q)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{
		ContentType: header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		res.Filename = params["filename"]
	}
	if res.Filename == "" {
		return nil, fmt.Errorf("export: response missing filename")
	}
	return res, nil
}

// pageFrom assembles a Page from an item slice and the pagination headers.
// Missing or malformed headers read as zero.
func pageFrom[T any](items []T, header http.Header) *Page[T] {
	total, _ := strconv.Atoi(header.Get("X-Total-Count"))
	offset, _ := strconv.Atoi(header.Get("X-Offset"))
	return &Page[T]{Items: items, Total: total, Offset: offset}
}
