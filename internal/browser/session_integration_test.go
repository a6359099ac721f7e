package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forge-build-publisher/internal/forge"
)

const manageHTML = `<!doctype html><html><body>
<form id="login-form" method="post" action="/login">
  <input name="vb_login_username"><input name="vb_login_password" type="password">
</form>
<select name="items-table_length"><option>10</option><option>25</option><option>100</option></select>
<table><tr><td><a data-item-id="1234" href="/item">My Module</a></td></tr>
<tr><td><a data-item-id="9999" href="/other">Other</a></td></tr></table>
</body></html>`

const itemHTML = `<!doctype html><html><body>
<div class="dropzone"><div class="dz-upload" style="width: 0%"></div>
<div class="dz-error-message" style="display:none"><span></span></div></div>
<input class="dz-hidden-input" type="file" style="visibility:hidden;position:absolute;top:0;left:0;height:0;width:0">
<button id="submit-build-button" disabled>Submit</button>
<select class="form-control item-build-channel item-build-option"><option value="none">Disabled</option><option value="test">Test</option><option value="live">Live</option></select>
<select class="form-control item-build-channel item-build-option"><option value="none">Disabled</option><option value="test" selected>Test</option><option value="live">Live</option></select>
<script>
const input = document.querySelector("input.dz-hidden-input");
const button = document.getElementById("submit-build-button");
input.addEventListener("change", () => {
  document.body.dataset.dropped = input.files.length ? input.files[0].name : "";
  button.disabled = false;
});
button.addEventListener("click", () => {
  document.querySelector(".dz-upload").style.width = "100%";
});
</script>
</body></html>`

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, err := FindChrome(); err != nil {
		t.Skip(err.Error())
	}
}

func TestSession_UploadAndPublishAgainstLocalForge(t *testing.T) {
	requireChrome(t)

	var loginPosts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/manage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(manageHTML))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		loginPosts.Add(1)
		http.Redirect(w, r, "/manage", http.StatusSeeOther)
	})
	mux.HandleFunc("/item", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(itemHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	build := filepath.Join(t.TempDir(), "MyModule.mod")
	require.NoError(t, os.WriteFile(build, []byte("PK"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sess, err := Open(ctx, Options{Headless: true, WindowWidth: 1280, WindowHeight: 1024, ActionTimeout: 10 * time.Second}, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	site := forge.DefaultSite(5 * time.Second)
	site.ProbeTimeout = 300 * time.Millisecond
	urls := forge.URLs{ManageCraft: srv.URL + "/manage"}
	m := forge.NewManager(sess.Page(), site, urls, zap.NewNop().Sugar())

	item := forge.Item{Creds: forge.Credentials{UserID: "1", Username: "u", Password: "p", PasswordMD5: "x"}, ID: "1234"}
	require.NoError(t, m.UploadAndPublish(ctx, item, build, forge.ChannelLive))

	var state struct {
		Dropped string `json:"dropped"`
		First   string `json:"first"`
		Second  string `json:"second"`
		Path    string `json:"path"`
	}
	err = chromedp.Run(sess.ctx, chromedp.Evaluate(`(function(){
const s=document.querySelectorAll("select.item-build-channel");
return {dropped:document.body.dataset.dropped||"",first:s[0].value,second:s[1].value,path:location.pathname};
})()`, &state))
	require.NoError(t, err)

	require.Equal(t, "/item", state.Path)
	require.Equal(t, "MyModule.mod", state.Dropped)
	require.Equal(t, "live", state.First)
	require.Equal(t, "test", state.Second)
	require.LessOrEqual(t, loginPosts.Load(), int32(1))
}

func TestSession_WaitTimesOutAsElementTimeout(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<!doctype html><html><body><p>empty</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := Open(ctx, Options{Headless: true, WindowWidth: 800, WindowHeight: 600, ActionTimeout: 10 * time.Second}, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer sess.Close()

	p := sess.Page()
	require.NoError(t, p.Navigate(ctx, srv.URL))

	err = p.WaitPresent(ctx, forge.CSS("#login-form"), 300*time.Millisecond)
	require.ErrorIs(t, err, forge.ErrElementTimeout)

	_, err = p.Text(ctx, forge.CSS(".toast-message"))
	require.ErrorIs(t, err, forge.ErrNoSuchElement)
}
