package kinto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Record is a Kinto object. Fields other than id and last_modified are opaque.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// LastModified returns the record timestamp, 0 if absent.
func (r Record) LastModified() int64 {
	switch v := r["last_modified"].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// String returns field key as a string, "" if absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// CollectionRef names a bucket/collection pair.
type CollectionRef struct {
	Bucket     string `json:"bucket"`
	Collection string `json:"collection"`
}

func (c CollectionRef) String() string {
	return c.Bucket + "/" + c.Collection
}

func (c CollectionRef) path() string {
	return "/buckets/" + url.PathEscape(c.Bucket) + "/collections/" + url.PathEscape(c.Collection)
}

// SignerResource is one entry of the signer capability.
type SignerResource struct {
	Source      CollectionRef  `json:"source"`
	Preview     *CollectionRef `json:"preview,omitempty"`
	Destination CollectionRef  `json:"destination"`
}

// ServerInfo is the subset of the server root ("hello") endpoint we use.
type ServerInfo struct {
	ProjectName    string `json:"project_name"`
	ProjectVersion string `json:"project_version"`
	Capabilities   struct {
		Signer *struct {
			Resources []SignerResource `json:"resources"`
		} `json:"signer,omitempty"`
	} `json:"capabilities"`
	Settings struct {
		BatchMaxRequests int `json:"batch_max_requests"`
	} `json:"settings"`
}

// SignerResources returns the signer capability resources, nil if the server
// has no signer.
func (s ServerInfo) SignerResources() []SignerResource {
	if s.Capabilities.Signer == nil {
		return nil
	}
	return s.Capabilities.Signer.Resources
}

// ServerInfo fetches the server root endpoint.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	_, err := c.getJSON(ctx, "/", nil, &info)
	return info, err
}

type dataEnvelope struct {
	Data Record `json:"data"`
}

// Collection fetches collection metadata.
func (c *Client) Collection(ctx context.Context, ref CollectionRef) (Record, error) {
	var env dataEnvelope
	if _, err := c.getJSON(ctx, ref.path(), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// PatchCollection merges data into the collection metadata.
func (c *Client) PatchCollection(ctx context.Context, ref CollectionRef, data map[string]any) error {
	return c.sendJSON(ctx, http.MethodPatch, ref.path(), map[string]any{"data": data}, nil)
}

// RequestReview sets the collection status to "to-review".
func (c *Client) RequestReview(ctx context.Context, ref CollectionRef, comment string) error {
	data := map[string]any{"status": "to-review"}
	if comment != "" {
		data["last_editor_comment"] = comment
	}
	return c.PatchCollection(ctx, ref, data)
}

// Record fetches one record. A missing record matches ErrNotFound.
func (c *Client) Record(ctx context.Context, ref CollectionRef, id string) (Record, error) {
	var env dataEnvelope
	if _, err := c.getJSON(ctx, ref.path()+"/records/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

type listEnvelope struct {
	Data []Record `json:"data"`
}

// Records lists all records of the collection, following pagination.
// filters are passed as query parameters (e.g. "has_attachment"="true").
func (c *Client) Records(ctx context.Context, ref CollectionRef, filters url.Values) ([]Record, error) {
	var all []Record
	target := c.endpoint(ref.path()+"/records", filters)

	for target != "" {
		req, err := c.newRequest(ctx, http.MethodGet, target, nil, "")
		if err != nil {
			return nil, err
		}
		var page listEnvelope
		header, err := c.do(req, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		target = header.Get("Next-Page")
	}
	return all, nil
}

// Changeset is the response of the changeset endpoint.
type Changeset struct {
	Metadata  Record   `json:"metadata"`
	Changes   []Record `json:"changes"`
	Timestamp int64    `json:"timestamp"`
}

// Changeset fetches the collection changeset. expected is the cache-busting
// timestamp; 0 asks for the latest.
func (c *Client) Changeset(ctx context.Context, ref CollectionRef, expected int64) (Changeset, error) {
	var cs Changeset
	query := url.Values{"_expected": {strconv.FormatInt(expected, 10)}}
	_, err := c.getJSON(ctx, ref.path()+"/changeset", query, &cs)
	return cs, err
}

// BatchRequest is one sub-request of POST /batch.
type BatchRequest struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Body   map[string]any `json:"body,omitempty"`
}

// PutRecord builds a batch request creating or replacing r in ref.
func PutRecord(ref CollectionRef, r Record) BatchRequest {
	data := make(map[string]any, len(r))
	for k, v := range r {
		if k == "last_modified" {
			continue
		}
		data[k] = v
	}
	return BatchRequest{
		Method: http.MethodPut,
		Path:   ref.path() + "/records/" + url.PathEscape(r.ID()),
		Body:   map[string]any{"data": data},
	}
}

// DeleteRecord builds a batch request deleting record id from ref.
func DeleteRecord(ref CollectionRef, id string) BatchRequest {
	return BatchRequest{
		Method: http.MethodDelete,
		Path:   ref.path() + "/records/" + url.PathEscape(id),
	}
}

type batchResponse struct {
	Responses []struct {
		Status int            `json:"status"`
		Path   string         `json:"path"`
		Body   map[string]any `json:"body"`
	} `json:"responses"`
}

// Batch sends requests through POST /batch, split into chunks no larger
// than the server's batch_max_requests. A failed sub-request stops at its
// chunk and reports the first failing status.
func (c *Client) Batch(ctx context.Context, requests []BatchRequest) error {
	if len(requests) == 0 {
		return nil
	}

	size := c.batchLimit(ctx)
	for start := 0; start < len(requests); start += size {
		end := min(start+size, len(requests))
		if err := c.batch(ctx, start, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) batch(ctx context.Context, offset int, chunk []BatchRequest) error {
	var out batchResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/batch", map[string]any{"requests": chunk}, &out); err != nil {
		return err
	}
	for i, r := range out.Responses {
		if r.Status < 200 || r.Status > 299 {
			msg, _ := r.Body["message"].(string)
			method := ""
			if i < len(chunk) {
				method = chunk[i].Method
			}
			return fmt.Errorf("batch request %d (%s %s): HTTP %d: %s", offset+i, method, r.Path, r.Status, msg)
		}
	}
	return nil
}

// batchLimit reads settings.batch_max_requests once per client, falling
// back to DefaultBatchMaxRequests when the root endpoint is unavailable.
func (c *Client) batchLimit(ctx context.Context) int {
	c.batchMu.Lock()
	defer c.batchMu.Unlock()

	if c.batchMax == 0 {
		c.batchMax = DefaultBatchMaxRequests
		if info, err := c.ServerInfo(ctx); err == nil && info.Settings.BatchMaxRequests > 0 {
			c.batchMax = info.Settings.BatchMaxRequests
		}
	}
	return c.batchMax
}

// UploadAttachment attaches content to record id, creating the record with
// data if needed.
func (c *Client) UploadAttachment(ctx context.Context, ref CollectionRef, id, filename, mimeType string, content []byte, data map[string]any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	meta, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode attachment data: %w", err)
	}
	if err := mw.WriteField("data", string(meta)); err != nil {
		return err
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="attachment"; filename=%q`, filename)}
	header["Content-Type"] = []string{mimeType}
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	target := c.endpoint(ref.path()+"/records/"+url.PathEscape(id)+"/attachment", nil)
	req, err := c.newRequest(ctx, http.MethodPost, target, &body, mw.FormDataContentType())
	if err != nil {
		return err
	}
	_, err = c.do(req, nil)
	return err
}
