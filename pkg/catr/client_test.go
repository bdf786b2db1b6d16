package catr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T, searchHTML string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "テスト商事", r.URL.Query().Get("word"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Write([]byte(searchHTML))
	})
	mux.HandleFunc("/companies/abc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table>
			<tr><th>資産の部</th><td>流動資産</td><td> 1,200
			百万円 </td></tr>
			<tr><th>当期純利益</th><td>85 百万円</td></tr>
			<tr><th>純利益</th><td>999</td></tr>
		</table></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestNotice(t *testing.T) {
	t.Parallel()

	srv := newSite(t, `<div class="company_name"><a href="/companies/abc">テスト商事株式会社</a></div>`)

	n, err := NewClient(WithBaseURL(srv.URL)).LatestNotice(context.Background(), "テスト商事")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "85 百万円", n.NetIncome)
	assert.Equal(t, "1,200 百万円", n.TotalAssets)
	assert.Equal(t, srv.URL+"/companies/abc", n.PageURL)
	assert.False(t, n.Empty())
}

func TestLatestNotice_NoMatch(t *testing.T) {
	t.Parallel()

	srv := newSite(t, `<p>該当なし</p>`)

	n, err := NewClient(WithBaseURL(srv.URL)).LatestNotice(context.Background(), "テスト商事")
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.True(t, n.Empty())
}

func TestLatestNotice_SearchFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).LatestNotice(context.Background(), "テスト商事")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
