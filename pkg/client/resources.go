package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zilaportal/portal/internal/transport/http/dto"
)

type UsersClient struct{ c *Client }

func (c *Client) Users() *UsersClient { return &UsersClient{c: c} }

func (u *UsersClient) List(ctx context.Context, status ApprovalStatus, limit, offset int) ([]User, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	setPage(q, limit, offset)
	return getList[User](ctx, u.c, withQuery("/users", q))
}

func (u *UsersClient) Pending(ctx context.Context) ([]User, error) {
	return getList[User](ctx, u.c, "/users/pending")
}

func (u *UsersClient) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	var out User
	err := u.c.DoJSON(ctx, http.MethodPost, "/users", req, &out)
	return out, err
}

// RequestAccess asks for more user types on behalf of the caller.
func (u *UsersClient) RequestAccess(ctx context.Context, types []UserType, note string) (AccessRequest, error) {
	var out AccessRequest
	err := u.c.DoJSON(ctx, http.MethodPost, "/users/request-access", dto.AccessRequestCreate{RequestedUserTypes: types, Note: note}, &out)
	return out, err
}

func (u *UsersClient) Approve(ctx context.Context, id string) (User, error) {
	return u.transition(ctx, id, "approve")
}

func (u *UsersClient) Suspend(ctx context.Context, id string) (User, error) {
	return u.transition(ctx, id, "suspend")
}

func (u *UsersClient) Reject(ctx context.Context, id string) (User, error) {
	return u.transition(ctx, id, "reject")
}

func (u *UsersClient) transition(ctx context.Context, id, action string) (User, error) {
	var out User
	err := u.c.DoJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/"+action, nil, &out)
	return out, err
}

type AccessRequestsClient struct{ c *Client }

func (c *Client) AccessRequests() *AccessRequestsClient { return &AccessRequestsClient{c: c} }

func (a *AccessRequestsClient) Create(ctx context.Context, types []UserType, note string) (AccessRequest, error) {
	var out AccessRequest
	err := a.c.DoJSON(ctx, http.MethodPost, "/access-requests", dto.AccessRequestCreate{RequestedUserTypes: types, Note: note}, &out)
	return out, err
}

func (a *AccessRequestsClient) List(ctx context.Context, status ContentStatus) ([]AccessRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	return getList[AccessRequest](ctx, a.c, withQuery("/access-requests", q))
}

func (a *AccessRequestsClient) Pending(ctx context.Context) ([]AccessRequest, error) {
	return getList[AccessRequest](ctx, a.c, "/access-requests/pending")
}

func (a *AccessRequestsClient) Mine(ctx context.Context) ([]AccessRequest, error) {
	return getList[AccessRequest](ctx, a.c, "/access-requests/my-requests")
}

func (a *AccessRequestsClient) Approve(ctx context.Context, id, adminNote string) (AccessRequest, error) {
	return a.decide(ctx, id, "approve", adminNote)
}

func (a *AccessRequestsClient) Reject(ctx context.Context, id, adminNote string) (AccessRequest, error) {
	return a.decide(ctx, id, "reject", adminNote)
}

func (a *AccessRequestsClient) decide(ctx context.Context, id, action, adminNote string) (AccessRequest, error) {
	var out AccessRequest
	err := a.c.DoJSON(ctx, http.MethodPatch, "/access-requests/"+url.PathEscape(id)+"/"+action, dto.DecisionRequest{AdminNote: adminNote}, &out)
	return out, err
}

type UpazilasClient struct{ c *Client }

func (c *Client) Upazilas() *UpazilasClient { return &UpazilasClient{c: c} }

func (u *UpazilasClient) List(ctx context.Context) ([]Upazila, error) {
	return getList[Upazila](ctx, u.c, "/upazilas")
}

// BySlug returns the upazila with its approved content counts per kind.
func (u *UpazilasClient) BySlug(ctx context.Context, slug string) (UpazilaDetail, error) {
	var out UpazilaDetail
	err := u.c.DoJSON(ctx, http.MethodGet, "/upazilas/"+url.PathEscape(slug), nil, &out)
	return out, err
}

func (u *UpazilasClient) Create(ctx context.Context, req UpazilaRequest) (Upazila, error) {
	var out Upazila
	err := u.c.DoJSON(ctx, http.MethodPost, "/upazilas", req, &out)
	return out, err
}

func (u *UpazilasClient) Update(ctx context.Context, id string, req UpazilaRequest) (Upazila, error) {
	var out Upazila
	err := u.c.DoJSON(ctx, http.MethodPut, "/upazilas/"+url.PathEscape(id), req, &out)
	return out, err
}

func (u *UpazilasClient) Delete(ctx context.Context, id string) error {
	return u.c.DoJSON(ctx, http.MethodDelete, "/upazilas/"+url.PathEscape(id), nil, nil)
}

// Seed inserts the district's upazilas that are missing and reports how many.
func (u *UpazilasClient) Seed(ctx context.Context) (int, error) {
	var out dto.SeedResponse
	err := u.c.DoJSON(ctx, http.MethodPost, "/upazilas/seed", nil, &out)
	return out.Inserted, err
}

type SlidersClient struct{ c *Client }

func (c *Client) Sliders() *SlidersClient { return &SlidersClient{c: c} }

func (s *SlidersClient) List(ctx context.Context) ([]Slider, error) {
	return getList[Slider](ctx, s.c, "/sliders")
}

func (s *SlidersClient) Get(ctx context.Context, id string) (Slider, error) {
	var out Slider
	err := s.c.DoJSON(ctx, http.MethodGet, "/sliders/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (s *SlidersClient) Create(ctx context.Context, in SliderInput) (Slider, error) {
	var out Slider
	err := s.c.DoJSON(ctx, http.MethodPost, "/sliders", in, &out)
	return out, err
}

func (s *SlidersClient) Update(ctx context.Context, id string, in SliderInput) (Slider, error) {
	var out Slider
	err := s.c.DoJSON(ctx, http.MethodPut, "/sliders/"+url.PathEscape(id), in, &out)
	return out, err
}

func (s *SlidersClient) Delete(ctx context.Context, id string) error {
	return s.c.DoJSON(ctx, http.MethodDelete, "/sliders/"+url.PathEscape(id), nil, nil)
}

type SettingsClient struct{ c *Client }

func (c *Client) Settings() *SettingsClient { return &SettingsClient{c: c} }

func (s *SettingsClient) List(ctx context.Context) ([]Setting, error) {
	return getList[Setting](ctx, s.c, "/settings")
}

func (s *SettingsClient) Get(ctx context.Context, key string) (Setting, error) {
	var out Setting
	err := s.c.DoJSON(ctx, http.MethodGet, "/settings/"+url.PathEscape(key), nil, &out)
	return out, err
}

func (s *SettingsClient) Put(ctx context.Context, key, value string) (Setting, error) {
	var out Setting
	err := s.c.DoJSON(ctx, http.MethodPut, "/settings/"+url.PathEscape(key), dto.SettingValueRequest{Value: value}, &out)
	return out, err
}

// PutMany writes every update in one transaction.
func (s *SettingsClient) PutMany(ctx context.Context, updates []SettingUpdate) ([]Setting, error) {
	var out listResponse[Setting]
	if err := s.c.DoJSON(ctx, http.MethodPut, "/settings", updates, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.DoJSON(ctx, http.MethodGet, "/admin/stats", nil, &out)
	return out, err
}

func (c *Client) AuditTrail(ctx context.Context, limit, offset int) ([]AuditEvent, error) {
	q := url.Values{}
	setPage(q, limit, offset)
	return getList[AuditEvent](ctx, c, withQuery("/admin/audit", q))
}

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out listResponse[T]
	if err := c.DoJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
