package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/fetch"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
	"github.com/thoreinstein/pagecheck/internal/logging"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

const (
	goodPage = `<html><head><title>Tea</title></head><body>
		<form id="mForm" method="post"><input name="phone" type="tel"></form>
	</body></html>`
	badPage = `<html><body><form id="wrongId" method="GET"></form></body></html>`
)

func testRegistry(t *testing.T) *preset.Registry {
	t.Helper()
	r := preset.NewRegistry()
	err := r.Register(&preset.Preset{
		Name:   "phone",
		Source: "test",
		Schema: htmlcheck.MustCompile(htmlcheck.Root(
			htmlcheck.WithTag("form", htmlcheck.Tag("form",
				htmlcheck.WithAttr("id", htmlcheck.Attr(htmlcheck.Expected("mForm"))),
				htmlcheck.WithAttr("method", htmlcheck.Attr(htmlcheck.Choices("POST"), htmlcheck.IgnoreCase())),
				htmlcheck.WithTag("phone", htmlcheck.Tag("input[name=phone]",
					htmlcheck.WithAttr("type", htmlcheck.Attr(htmlcheck.Expected("tel"))),
				)),
			)),
		)),
	})
	require.NoError(t, err)
	return r
}

func testContext(t *testing.T) context.Context {
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

func TestCheck_Markup(t *testing.T) {
	c := New(Options{Registry: testRegistry(t)})

	tests := []struct {
		name string
		html string
		want htmlcheck.Histogram
	}{
		{"good page", goodPage, htmlcheck.Histogram{}},
		{"bad page", badPage, htmlcheck.Histogram{0, 0, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Check(testContext(t), Request{HTML: []byte(tt.html)}, "phone")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Histogram)
			assert.Equal(t, "-", res.Source)
			assert.Equal(t, "phone", res.Preset)
			assert.Contains(t, res.Errors, htmlcheck.NonFieldErrors)
			require.NotNil(t, res.Node)
		})
	}
}

func TestCheck_Title(t *testing.T) {
	c := New(Options{Registry: testRegistry(t)})
	res, err := c.Check(context.Background(), Request{Source: "tea.html", HTML: []byte(goodPage)}, "PHONE")
	require.NoError(t, err)
	assert.Equal(t, "Tea", res.Title)
	assert.Equal(t, "tea.html", res.Source)
}

func TestCheck_LegacyCharset(t *testing.T) {
	page, err := charmap.Windows1251.NewEncoder().String(`<html><head>
		<meta charset="windows-1251"><title>Заказ</title></head><body>
		<form id="mForm" method="post"><input name="phone" type="tel"></form>
	</body></html>`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	c := New(Options{Registry: testRegistry(t), Fetcher: fetch.New(fetch.Options{})})
	for name, req := range map[string]Request{
		"url":    {URL: srv.URL},
		"markup": {Source: "order.html", HTML: []byte(page)},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := c.Check(testContext(t), req, "phone")
			require.NoError(t, err)
			assert.Equal(t, "Заказ", res.Title)
			assert.Equal(t, 0, res.Histogram.Total())
		})
	}
}

func TestCheck_URLWinsOverMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, goodPage)
	}))
	defer srv.Close()

	c := New(Options{Registry: testRegistry(t)})
	res, err := c.Check(testContext(t), Request{URL: srv.URL + "/lp?token=secret123", HTML: []byte(badPage)}, "phone")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Histogram.Total())
	assert.NotContains(t, res.Source, "secret123")
}

func TestCheck_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Options{Registry: testRegistry(t)})
	ctx := context.Background()

	_, err := c.Check(ctx, Request{HTML: []byte(goodPage)}, "atlas")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)

	_, err = c.Check(ctx, Request{}, "phone")
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = c.Check(ctx, Request{HTML: []byte("<div>no root</div>")}, "phone")
	assert.ErrorIs(t, err, errors.ErrRootNotFound)

	_, err = c.Check(ctx, Request{URL: srv.URL}, "phone")
	assert.True(t, errors.Is(err, errors.ErrFetch), "%v", err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Check(cancelled, Request{HTML: []byte(goodPage)}, "phone")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck_BuiltinPreset(t *testing.T) {
	c := New(Options{})
	res, err := c.Check(context.Background(), Request{HTML: []byte(`<html><head><title>Document</title></head><body></body></html>`)}, preset.Atlas)
	require.NoError(t, err)
	assert.Equal(t, htmlcheck.SeverityDanger, res.Histogram.Worst())
}

func TestCheckAll(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		if r.URL.Path == "/bad" {
			fmt.Fprint(w, badPage)
			return
		}
		fmt.Fprint(w, goodPage)
	}))
	defer srv.Close()

	c := New(Options{
		Registry:    testRegistry(t),
		Fetcher:     fetch.New(fetch.Options{Timeout: 5 * time.Second}),
		Concurrency: 2,
	})

	reqs := []Request{
		{URL: srv.URL + "/good"},
		{URL: srv.URL + "/bad"},
		{Source: "inline", HTML: []byte(badPage)},
		{Source: "broken", HTML: []byte("<p>fragment</p>")},
		{URL: srv.URL + "/good"},
		{URL: srv.URL + "/bad"},
	}
	out, err := c.CheckAll(testContext(t), reqs, "phone")
	require.NoError(t, err)
	require.Len(t, out, len(reqs))

	wantTotals := []int{0, 3, 3, -1, 0, 3}
	for i, o := range out {
		assert.Equal(t, reqs[i], o.Request, "outcome %d out of order", i)
		if wantTotals[i] < 0 {
			assert.ErrorIs(t, o.Err, errors.ErrRootNotFound)
			assert.Nil(t, o.Result)
			continue
		}
		require.NoError(t, o.Err, "outcome %d", i)
		assert.Equal(t, wantTotals[i], o.Result.Histogram.Total(), "outcome %d", i)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestCheckAll_UnknownPreset(t *testing.T) {
	c := New(Options{Registry: testRegistry(t)})
	out, err := c.CheckAll(context.Background(), []Request{{HTML: []byte(goodPage)}}, "nope")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)
	assert.Nil(t, out)
}
