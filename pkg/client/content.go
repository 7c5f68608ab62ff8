package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zilaportal/portal/internal/domain/enums"
)

// Envelope is the server owned part of a submission.
type Envelope struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"kind"`
	OwnerID     string        `json:"ownerId"`
	UpazilaID   *string       `json:"upazilaId,omitempty"`
	Category    string        `json:"category,omitempty"`
	Status      ContentStatus `json:"status"`
	Slug        string        `json:"slug,omitempty"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	ReviewedBy  *string       `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Item is a submission as the API returns it: one flat object carrying the
// envelope and the kind fields.
type Item[T any] struct {
	Envelope
	Data T
}

func (i *Item[T]) UnmarshalJSON(raw []byte) error {
	if err := json.Unmarshal(raw, &i.Envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(raw, &i.Data); err != nil {
		return fmt.Errorf("decode %s fields: %w", i.Kind, err)
	}
	return nil
}

// ListOptions filters a content list. Zero values are omitted.
type ListOptions struct {
	UpazilaID string
	Category  string
	Status    ContentStatus
	Limit     int
	Offset    int
}

// Content talks to one submittable kind.
type Content[T any] struct {
	c             *Client
	kind          Kind
	categoryParam string
}

func newContent[T any](c *Client, kind Kind, categoryParam string) *Content[T] {
	return &Content[T]{c: c, kind: kind, categoryParam: categoryParam}
}

func (c *Client) Hospitals() *Content[Hospital] {
	return newContent[Hospital](c, enums.KindHospital, "type")
}

func (c *Client) HomeTutors() *Content[Tutor] {
	return newContent[Tutor](c, enums.KindHomeTutor, "")
}

func (c *Client) ToLets() *Content[ToLet] {
	return newContent[ToLet](c, enums.KindToLet, "propertyType")
}

func (c *Client) Businesses() *Content[Business] {
	return newContent[Business](c, enums.KindBusiness, "businessType")
}

func (c *Client) TouristPlaces() *Content[TouristPlace] {
	return newContent[TouristPlace](c, enums.KindTouristPlace, "placeType")
}

func (c *Client) Blogs() *Content[Blog] {
	return newContent[Blog](c, enums.KindBlog, "")
}

func (r *Content[T]) Kind() Kind {
	return r.kind
}

func (r *Content[T]) path(parts ...string) string {
	p := "/" + string(r.kind)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (r *Content[T]) List(ctx context.Context, opts ListOptions) ([]Item[T], error) {
	q := url.Values{}
	if opts.UpazilaID != "" {
		q.Set("upazilaId", opts.UpazilaID)
	}
	if opts.Category != "" && r.categoryParam != "" {
		q.Set(r.categoryParam, opts.Category)
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	setPage(q, opts.Limit, opts.Offset)
	return r.list(ctx, withQuery(r.path(), q))
}

// Pending lists items awaiting review. Moderators only.
func (r *Content[T]) Pending(ctx context.Context) ([]Item[T], error) {
	return r.list(ctx, r.path("pending"))
}

// Mine lists the caller's own items in every status.
func (r *Content[T]) Mine(ctx context.Context) ([]Item[T], error) {
	return r.list(ctx, r.path("mine"))
}

func (r *Content[T]) Get(ctx context.Context, id string) (Item[T], error) {
	return r.one(ctx, http.MethodGet, r.path(id), nil)
}

// Create submits a new item. It always starts PENDING.
func (r *Content[T]) Create(ctx context.Context, upazilaID string, data T) (Item[T], error) {
	body, err := flatBody(upazilaID, data)
	if err != nil {
		return Item[T]{}, err
	}
	return r.one(ctx, http.MethodPost, r.path(), body)
}

func (r *Content[T]) Update(ctx context.Context, id, upazilaID string, data T) (Item[T], error) {
	body, err := flatBody(upazilaID, data)
	if err != nil {
		return Item[T]{}, err
	}
	return r.one(ctx, http.MethodPut, r.path(id), body)
}

func (r *Content[T]) Delete(ctx context.Context, id string) error {
	return r.c.DoJSON(ctx, http.MethodDelete, r.path(id), nil, nil)
}

func (r *Content[T]) Approve(ctx context.Context, id string) (Item[T], error) {
	return r.one(ctx, http.MethodPatch, r.path(id, "approve"), nil)
}

func (r *Content[T]) Reject(ctx context.Context, id string) (Item[T], error) {
	return r.one(ctx, http.MethodPatch, r.path(id, "reject"), nil)
}

// BySlug fetches an item by its public slug. Only blogs carry slugs.
func (r *Content[T]) BySlug(ctx context.Context, slug string) (Item[T], error) {
	return r.one(ctx, http.MethodGet, r.path("slug", slug), nil)
}

func (r *Content[T]) list(ctx context.Context, path string) ([]Item[T], error) {
	var out listResponse[Item[T]]
	if err := r.c.DoJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *Content[T]) one(ctx context.Context, method, path string, body any) (Item[T], error) {
	var out Item[T]
	if err := r.c.DoJSON(ctx, method, path, body, &out); err != nil {
		return Item[T]{}, err
	}
	return out, nil
}

func flatBody(upazilaID string, data any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &RequestError{Op: "marshal content fields", Err: err}
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &RequestError{Op: "flatten content fields", Err: err}
	}
	if upazilaID != "" {
		id, _ := json.Marshal(upazilaID)
		fields["upazilaId"] = id
	}
	return fields, nil
}

func setPage(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
