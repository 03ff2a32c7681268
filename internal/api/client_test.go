package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idilsaglam/authtodo/internal/api"
	"github.com/idilsaglam/authtodo/internal/logging"
	"github.com/idilsaglam/authtodo/internal/model"
	"github.com/idilsaglam/authtodo/internal/session"
	"github.com/idilsaglam/authtodo/internal/testutil"
)

func newClient(t *testing.T, fake http.Handler, token string) (*api.Client, *session.Holder) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	h := session.NewHolder("")
	if token != "" {
		h.Set(&model.Session{AccessToken: token})
	}
	c := api.New(srv.URL+"/", h, api.WithHTTPClient(srv.Client()), api.WithLogger(logging.Discard()))
	return c, h
}

func TestClient_List(t *testing.T) {
	fake := testutil.NewFakeAPI("T1",
		model.Item{ID: "1", Title: "Buy milk"},
		model.Item{ID: "2", Title: "Walk dog", Completed: true},
	)
	c, _ := newClient(t, fake, "T1")

	items, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[1].Title != "Walk dog" || !items[1].Completed {
		t.Errorf("unexpected items %+v", items)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Method != http.MethodGet || reqs[0].Path != "/" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if reqs[0].Auth != "Bearer T1" {
		t.Errorf("expected bearer header, got %q", reqs[0].Auth)
	}
}

func TestClient_EmptyCollectionIsNonNil(t *testing.T) {
	c, _ := newClient(t, testutil.NewFakeAPI(""), "T1")
	items, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty slice, got %#v", items)
	}
}

func TestClient_MutationsSendContractBodies(t *testing.T) {
	fake := testutil.NewFakeAPI("T1", model.Item{ID: "1", Title: "a"})
	c, _ := newClient(t, fake, "T1")
	ctx := context.Background()

	if err := c.Create(ctx, "Buy eggs"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.SetCompleted(ctx, "1", true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	if err := c.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []testutil.Request{
		{Method: "POST", Path: "/", Body: `{"title":"Buy eggs","completed":false}`},
		{Method: "PATCH", Path: "/1", Body: `{"completed":true}`},
		{Method: "DELETE", Path: "/2", Body: ""},
	}
	got := fake.Requests()
	if len(got) != len(want) {
		t.Fatalf("expected %d requests, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].Method != want[i].Method || got[i].Path != want[i].Path || got[i].Body != want[i].Body {
			t.Errorf("request %d: expected %+v, got %+v", i, want[i], got[i])
		}
		if got[i].Auth != "Bearer T1" {
			t.Errorf("request %d: missing bearer, got %q", i, got[i].Auth)
		}
	}

	items := fake.Items()
	if len(items) != 1 || !items[0].Completed {
		t.Errorf("unexpected server state %+v", items)
	}
}

func TestClient_TokenIsReadPerRequest(t *testing.T) {
	fake := testutil.NewFakeAPI("")
	c, h := newClient(t, fake, "T1")
	ctx := context.Background()

	if _, err := c.List(ctx); err != nil {
		t.Fatal(err)
	}
	h.Set(&model.Session{AccessToken: "T2"})
	if _, err := c.List(ctx); err != nil {
		t.Fatal(err)
	}
	reqs := fake.Requests()
	if reqs[0].Auth != "Bearer T1" || reqs[1].Auth != "Bearer T2" {
		t.Errorf("expected rotated token, got %q then %q", reqs[0].Auth, reqs[1].Auth)
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	ctx := context.Background()

	t.Run("status", func(t *testing.T) {
		fake := testutil.NewFakeAPI("T1")
		fake.Fail(http.MethodPost, http.StatusInternalServerError)
		c, _ := newClient(t, fake, "T1")
		err := c.Create(ctx, "x")
		var ae *api.Error
		if !errors.As(err, &ae) || ae.Kind != api.KindStatus || ae.StatusCode != 500 {
			t.Errorf("expected status error, got %v", err)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		c, _ := newClient(t, testutil.NewFakeAPI("T1"), "wrong")
		_, err := c.List(ctx)
		if api.KindOf(err) != api.KindUnauthenticated || !errors.Is(err, api.ErrUnauthenticated) {
			t.Errorf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("no token", func(t *testing.T) {
		fake := testutil.NewFakeAPI("")
		c, _ := newClient(t, fake, "")
		_, err := c.List(ctx)
		if api.KindOf(err) != api.KindUnauthenticated || !errors.Is(err, session.ErrNoToken) {
			t.Errorf("expected ErrNoToken, got %v", err)
		}
		if len(fake.Requests()) != 0 {
			t.Error("no request should reach the server without a token")
		}
	})

	t.Run("decode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"an array"}`))
		}))
		defer srv.Close()
		h := session.NewHolder("T1")
		c := api.New(srv.URL, h, api.WithLogger(logging.Discard()))
		if _, err := c.List(ctx); api.KindOf(err) != api.KindDecode {
			t.Errorf("expected decode error, got %v", err)
		}
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := api.New(url, session.NewHolder("T1"), api.WithLogger(logging.Discard()))
		if _, err := c.List(ctx); api.KindOf(err) != api.KindTransport {
			t.Errorf("expected transport error, got %v", err)
		}
	})
}

func TestClient_RequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(api.RequestIDHeader)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := api.New(srv.URL, session.NewHolder("T1"), api.WithLogger(logging.Discard()))
	if _, err := c.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 36 {
		t.Errorf("expected uuid request id, got %q", got)
	}
}
