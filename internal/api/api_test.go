package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store/memory"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testServer struct {
	router  *gin.Engine
	svc     *calendar.Service
	company uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	stores := memory.New().Stores()
	svc := calendar.NewService(stores, calendar.Options{})
	authn := auth.NewAuthenticator(stores.Users, stores.Sessions, auth.Config{
		TokenSecret: testSecret,
		SessionTTL:  time.Hour,
	})

	return &testServer{
		router:  NewRouter(svc, authn, Options{Logger: zerolog.Nop()}),
		svc:     svc,
		company: uuid.Must(uuid.NewV7()),
	}
}

func (s *testServer) addUser(t *testing.T, username string, companyID uuid.UUID) *models.User {
	t.Helper()

	u, err := s.svc.AddUser(context.Background(), calendar.AddUserInput{
		Username:  username,
		Password:  "password",
		CompanyID: companyID,
		Email:     username + "@example.com",
		FirstName: username,
	})
	require.NoError(t, err)
	return u
}

// do sends body as JSON, authenticated as user when user is not nil.
func (s *testServer) do(t *testing.T, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := auth.IssueToken(testSecret, user.UserID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestEndToEndEventVisibility(t *testing.T) {
	s := newTestServer(t)

	u1 := s.addUser(t, "u1", s.company)
	u2 := s.addUser(t, "u2", s.company)
	u3 := s.addUser(t, "u3", s.company)

	w := s.do(t, u1, http.MethodPost, "/locations/", map[string]any{
		"manager_id": u1.UserID,
		"name":       "Board room",
		"address":    "Main street 1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	location := decode[LocationCreatedResponse](t, w)
	require.Equal(t, u1.UserID, location.ManagerID)

	w = s.do(t, u1, http.MethodPost, "/events/", map[string]any{
		"name":         "Planning",
		"agenda":       "Roadmap",
		"date_start":   "2024-04-26 11:00:00",
		"date_end":     "2024-04-26 12:00:00",
		"participants": []string{u2.Email},
		"location_id":  location.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[EventResponse](t, w)
	require.Equal(t, "u1", created.Owner.Username)
	require.Equal(t, "2024-04-26T11:00:00+02:00", created.DateStart)
	require.Equal(t, "2024-04-26T12:00:00+02:00", created.DateEnd)
	require.Len(t, created.Participants, 1)
	require.Equal(t, u2.Email, created.Participants[0].Email)
	require.NotNil(t, created.Location)
	require.Equal(t, location.ID, created.Location.ID)
	require.Equal(t, "u1", created.Location.Manager.Username)

	w = s.do(t, u2, http.MethodGet, "/events/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]EventResponse](t, w)
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)

	w = s.do(t, u3, http.MethodGet, "/events/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]EventResponse](t, w))

	path := fmt.Sprintf("/events/%d/", created.ID)
	require.Equal(t, http.StatusOK, s.do(t, u2, http.MethodGet, path, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(t, u3, http.MethodGet, path, nil).Code)
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/events/", "/events/1/", "/locations/", "/locations/1/"} {
		t.Run(path, func(t *testing.T) {
			w := s.do(t, nil, http.MethodGet, path, nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())
		})
	}

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCreateEventErrors(t *testing.T) {
	s := newTestServer(t)
	owner := s.addUser(t, "owner", s.company)

	outsider := s.addUser(t, "outsider", uuid.Must(uuid.NewV7()))
	foreign, err := s.svc.CreateLocation(context.Background(), outsider, calendar.CreateLocationInput{
		ManagerID: outsider.UserID, Name: "Elsewhere", Address: "Far away 2",
	})
	require.NoError(t, err)

	valid := func() map[string]any {
		return map[string]any{
			"name":         "Standup",
			"agenda":       "Daily sync",
			"date_start":   "2024-04-26 09:00:00",
			"date_end":     "2024-04-26 09:15:00",
			"participants": []string{},
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{
			name:   "missing name",
			mutate: func(b map[string]any) { delete(b, "name") },
			want:   `{"name":["This field is required."]}`,
		},
		{
			name:   "missing participants",
			mutate: func(b map[string]any) { delete(b, "participants") },
			want:   `{"participants":["This field is required."]}`,
		},
		{
			name:   "invalid participant email",
			mutate: func(b map[string]any) { b["participants"] = []string{"not-an-email"} },
			want:   `{"participants":["Enter a valid email address."]}`,
		},
		{
			name:   "name too long",
			mutate: func(b map[string]any) { b["name"] = string(bytes.Repeat([]byte("x"), 65)) },
			want:   `{"name":["Ensure this field has no more than 64 characters."]}`,
		},
		{
			name:   "location id below one",
			mutate: func(b map[string]any) { b["location_id"] = 0 },
			want:   `{"location_id":["Ensure this value is greater than or equal to 1."]}`,
		},
		{
			name:   "location id not an integer",
			mutate: func(b map[string]any) { b["location_id"] = "abc" },
			want:   `{"location_id":["A valid integer is required."]}`,
		},
		{
			name:   "malformed start",
			mutate: func(b map[string]any) { b["date_start"] = "2024-04-26T09:00" },
			want:   `{"date_start":["Datetime has wrong format. Use one of these formats instead: YYYY-MM-DD hh:mm:ss."]}`,
		},
		{
			name:   "end before start",
			mutate: func(b map[string]any) { b["date_end"] = "2024-04-26 08:00:00" },
			want:   `{"non_field_errors":["End must occur after start"]}`,
		},
		{
			name:   "exactly eight hours",
			mutate: func(b map[string]any) { b["date_end"] = "2024-04-26 17:00:00" },
			want:   `{"non_field_errors":["Event must not be longer than 8 hours"]}`,
		},
		{
			name:   "location outside company",
			mutate: func(b map[string]any) { b["location_id"] = foreign.LocationID },
			want:   `{"location_id":["Location not available"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)

			w := s.do(t, owner, http.MethodPost, "/events/", body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.JSONEq(t, tt.want, w.Body.String())
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events/", bytes.NewBufferString(`{`))
		token, err := auth.IssueToken(testSecret, owner.UserID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decode[map[string]string](t, w), "detail")
	})
}

func TestListEventsFilters(t *testing.T) {
	s := newTestServer(t)
	owner := s.addUser(t, "owner", s.company)

	for _, e := range []struct{ name, start, end string }{
		{"Planning", "2024-04-26 09:00:00", "2024-04-26 10:00:00"},
		{"Retro", "2024-04-27 09:00:00", "2024-04-27 10:00:00"},
	} {
		w := s.do(t, owner, http.MethodPost, "/events/", map[string]any{
			"name": e.name, "agenda": "Team", "date_start": e.start, "date_end": e.end,
			"participants": []string{},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Planning", "Retro"}},
		{"?day=2024-04-27", []string{"Retro"}},
		{"?day=yesterday", []string{}},
		{"?query=plan", []string{"Planning"}},
		{"?query=team,retro", []string{"Retro"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(t, owner, http.MethodGet, "/events/"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			names := []string{}
			for _, e := range decode[[]EventResponse](t, w) {
				names = append(names, e.Name)
			}
			require.Equal(t, tt.want, names)
		})
	}

	t.Run("malformed location_id", func(t *testing.T) {
		w := s.do(t, owner, http.MethodGet, "/events/?location_id=abc", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"location_id":["Enter a number."]}`, w.Body.String())
	})
}

func TestLocations(t *testing.T) {
	s := newTestServer(t)
	manager := s.addUser(t, "manager", s.company)
	colleague := s.addUser(t, "colleague", s.company)
	outsider := s.addUser(t, "outsider", uuid.Must(uuid.NewV7()))

	w := s.do(t, manager, http.MethodPost, "/locations/", map[string]any{
		"manager_id": manager.UserID, "name": "Kitchen", "address": "Main street 1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[LocationCreatedResponse](t, w)

	t.Run("visible within company", func(t *testing.T) {
		w := s.do(t, colleague, http.MethodGet, "/locations/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		listed := decode[[]LocationResponse](t, w)
		require.Len(t, listed, 1)
		require.Equal(t, "manager", listed[0].Manager.Username)

		w = s.do(t, colleague, http.MethodGet, fmt.Sprintf("/locations/%d/", created.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("hidden from other companies", func(t *testing.T) {
		w := s.do(t, outsider, http.MethodGet, "/locations/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, decode[[]LocationResponse](t, w))

		w = s.do(t, outsider, http.MethodGet, fmt.Sprintf("/locations/%d/", created.ID), nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())
	})

	t.Run("non numeric id", func(t *testing.T) {
		w := s.do(t, manager, http.MethodGet, "/locations/abc/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown manager", func(t *testing.T) {
		w := s.do(t, manager, http.MethodPost, "/locations/", map[string]any{
			"manager_id": 999, "name": "Ghost", "address": "Nowhere",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"manager_id":["Invalid pk \"999\" - object does not exist."]}`, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(t, manager, http.MethodPost, "/locations/", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		errs := decode[FieldErrors](t, w)
		require.Equal(t, []string{"This field is required."}, errs["manager_id"])
		require.Equal(t, []string{"This field is required."}, errs["name"])
		require.Equal(t, []string{"This field is required."}, errs["address"])
	})
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "dominik", s.company)

	login := func(password string) *httptest.ResponseRecorder {
		return s.do(t, nil, http.MethodPost, "/auth/login", map[string]string{
			"username": "dominik", "password": password,
		})
	}

	t.Run("wrong password", func(t *testing.T) {
		w := login("nope")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"non_field_errors":["Unable to log in with provided credentials."]}`, w.Body.String())
	})

	t.Run("cookie session", func(t *testing.T) {
		w := login("password")
		require.Equal(t, http.StatusNoContent, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, auth.SessionCookieName, cookies[0].Name)
		require.True(t, cookies[0].HttpOnly)

		get := func() int {
			req := httptest.NewRequest(http.MethodGet, "/events/", nil)
			req.AddCookie(cookies[0])
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			return w.Code
		}
		require.Equal(t, http.StatusOK, get())

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(cookies[0])
		out := httptest.NewRecorder()
		s.router.ServeHTTP(out, req)
		require.Equal(t, http.StatusNoContent, out.Code)

		require.Equal(t, http.StatusUnauthorized, get())
	})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
