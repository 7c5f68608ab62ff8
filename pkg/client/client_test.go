package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zilaportal/portal/internal/domain/enums"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const loginResponse = `{"accessToken":"access-1","refreshToken":"refresh-1","expiresInSec":900,
"user":{"id":"u-1","email":"mod@example.com","fullName":"Mod","userTypes":[],"roles":["AREA_MODERATOR"],"approvalStatus":"APPROVED"}}`

func TestNewRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "/relative"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoginStoresSessionAndAttachesToken(t *testing.T) {
	store := NewMemoryTokenStore()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, loginResponse)
		case "/api/users/me":
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"id":"u-1","email":"mod@example.com","roles":["AREA_MODERATOR"],"approvalStatus":"APPROVED"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, WithTokenStore(store))

	user, err := c.Login(context.Background(), "mod@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	assert.True(t, c.Session().Authenticated())
	assert.True(t, c.Session().CanModerate())
	assert.False(t, c.Session().IsAdmin())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", saved.RefreshToken)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	expired := 0
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(Tokens{AccessToken: "stale", RefreshToken: "stale-refresh"}))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"code":"UNAUTHORIZED","message":"invalid access token"}`)
	}, WithTokenStore(store), WithSessionExpiredHook(func() { expired++ }))

	require.True(t, c.Session().Authenticated(), "tokens are restored from the store")

	_, err := c.Hospitals().Mine(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.False(t, c.Session().Authenticated())
	assert.Equal(t, 1, expired)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved.AccessToken)
}

func TestLoginFailureDoesNotExpire(t *testing.T) {
	expired := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"code":"UNAUTHORIZED","message":"invalid email or password"}`)
	}, WithSessionExpiredHook(func() { expired = true }))

	_, err := c.Login(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "UNAUTHORIZED", ErrorCode(err))
	assert.False(t, expired)
}

func TestRequestErrorCarriesAPIFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/blogs":
			writeJSON(w, http.StatusBadRequest, `{"code":"VALIDATION_ERROR","message":"content is required","field":"content"}`)
		case "/api/auth/login":
			w.Header().Set("Retry-After", "42")
			writeJSON(w, http.StatusTooManyRequests, `{"code":"RATE_LIMITED","message":"too many attempts","retryAfterSec":42}`)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	})

	_, err := c.Blogs().Create(context.Background(), "", Blog{Title: "Hello"})
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "VALIDATION_ERROR", reqErr.Code)
	assert.Equal(t, "content", reqErr.Field)

	_, err = c.Login(context.Background(), "a@example.com", "x")
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
	assert.Equal(t, 42.0, reqErr.RetryAfter.Seconds())

	_, err = c.Upazilas().List(context.Background())
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
	assert.Contains(t, reqErr.Error(), "boom")
}

func TestContentCreateSendsFlatBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/home-tutors", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "upz-1", body["upazilaId"])
		assert.Equal(t, "Rahim", body["tutorName"])
		assert.NotContains(t, body, "Data")

		writeJSON(w, http.StatusCreated, `{"id":"t-1","kind":"home-tutors","ownerId":"u-1","upazilaId":"upz-1","status":"PENDING",
"tutorName":"Rahim","subjects":"Math","classes":"6-8","phone":"01700000000","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`)
	})

	item, err := c.HomeTutors().Create(context.Background(), "upz-1", Tutor{TutorName: "Rahim", Subjects: "Math", Classes: "6-8", Phone: "01700000000"})
	require.NoError(t, err)
	assert.Equal(t, "t-1", item.ID)
	assert.Equal(t, enums.ContentStatusPending, item.Status)
	require.NotNil(t, item.UpazilaID)
	assert.Equal(t, "upz-1", *item.UpazilaID)
	assert.Equal(t, "Rahim", item.Data.TutorName)
}

func TestContentListBuildsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hospitals", r.URL.Path)
		assert.Equal(t, "GOVERNMENT", r.URL.Query().Get("type"))
		assert.Equal(t, "upz-2", r.URL.Query().Get("upazilaId"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"items":[{"id":"h-1","kind":"hospitals","status":"APPROVED","name":"Sadar Hospital","type":"GOVERNMENT","phone":"1"}]}`)
	})

	items, err := c.Hospitals().List(context.Background(), ListOptions{UpazilaID: "upz-2", Category: "GOVERNMENT", Limit: 5})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sadar Hospital", items[0].Data.Name)
	assert.Equal(t, enums.HospitalTypeGovernment, items[0].Data.Type)
}

func TestLogoutClearsEvenOnServerError(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(Tokens{AccessToken: "a", RefreshToken: "r"}))
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}, WithTokenStore(store))

	err := c.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, c.Session().Authenticated())
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileTokenStore(path)

	empty, err := store.Load()
	require.NoError(t, err)
	assert.True(t, empty.empty())

	require.NoError(t, store.Save(Tokens{AccessToken: "a", RefreshToken: "r"}))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "r", loaded.RefreshToken)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.empty())
}

func TestSessionCanCreateFollowsCapabilities(t *testing.T) {
	s := NewSession(nil)
	assert.False(t, s.CanCreate(KindBlog))

	s.setUser(User{ID: "u-1", UserTypes: []UserType{UserTypeHomeTutor}, ApprovalStatus: ApprovalStatusApproved})
	assert.True(t, s.CanCreate(KindHomeTutor))
	assert.False(t, s.CanCreate(KindHospital))
	assert.True(t, s.HasType(UserTypeHomeTutor))

	s.setUser(User{ID: "u-1", UserTypes: []UserType{UserTypeHomeTutor}, ApprovalStatus: ApprovalStatusSuspended})
	assert.False(t, s.CanCreate(KindHomeTutor))
}

func TestExportedConstantsMatchWireValues(t *testing.T) {
	assert.Equal(t, "home-tutors", string(KindHomeTutor))
	assert.Equal(t, "tourist-places", string(KindTouristPlace))
	assert.Equal(t, "BUSINESS_OWNER", string(UserTypeBusinessOwner))
	assert.Equal(t, "AREA_MODERATOR", string(RoleAreaModerator))
	assert.Equal(t, "PENDING", string(StatusPending))
	assert.Equal(t, "SUSPENDED", string(ApprovalStatusSuspended))
	assert.Equal(t, "TOURIST_SPOT", string(PlaceTypeTouristSpot))

	var kind Kind = enums.KindBlog
	assert.Equal(t, KindBlog, kind)
	assert.True(t, PropertyTypeApartment.Valid())
}

func TestItemUnmarshalSplitsEnvelope(t *testing.T) {
	raw := `{"id":"b-1","kind":"blogs","status":"APPROVED","slug":"hello-world","title":"Hello","content":"Body","tags":["news"]}`
	var item Item[Blog]
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, "hello-world", item.Slug)
	assert.Equal(t, "Hello", item.Data.Title)
	assert.Equal(t, []string{"news"}, item.Data.Tags)
	assert.Equal(t, enums.KindBlog, item.Kind)
}
