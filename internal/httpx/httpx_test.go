package httpx

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func TestDo_SetsUserAgentAndHeaders(t *testing.T) {
    var gotUA, gotLang, gotKeep string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotUA = r.Header.Get("User-Agent")
        gotLang = r.Header.Get("Accept-Language")
        gotKeep = r.Header.Get("X-Keep")
        w.WriteHeader(http.StatusNoContent)
    }))
    defer srv.Close()

    c := New(time.Second)
    c.Headers = map[string]string{"Accept-Language": "fa-IR", "X-Keep": "client"}

    req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
    require.NoError(t, err)
    req.Header.Set("X-Keep", "request")

    res, err := c.Do(req)
    require.NoError(t, err)
    res.Body.Close()

    require.Equal(t, DefaultUserAgent, gotUA)
    require.Equal(t, "fa-IR", gotLang)
    require.Equal(t, "request", gotKeep, "request headers win over client defaults")
}

func TestDo_RespectsExplicitUserAgent(t *testing.T) {
    var gotUA string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotUA = r.Header.Get("User-Agent")
    }))
    defer srv.Close()

    c := New(time.Second)
    req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
    require.NoError(t, err)
    req.Header.Set("User-Agent", "custom/1.0")

    res, err := c.Do(req)
    require.NoError(t, err)
    res.Body.Close()
    require.Equal(t, "custom/1.0", gotUA)
}

func TestNew_Timeout(t *testing.T) {
    c := New(10 * time.Second)
    require.Equal(t, 10*time.Second, c.HTTP.Timeout)
}
