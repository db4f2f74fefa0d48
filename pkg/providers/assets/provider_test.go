package assets

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getremoted/remoted/pkg/router"
)

// newContentRoot builds a small project tree:
//
//	meshes/cube.fbx
//	meshes/sphere.fbx
//	textures/wood/oak.png
//	readme.txt
//	.hidden/secret.txt
func newContentRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"meshes/cube.fbx":       "cube-bytes",
		"meshes/sphere.fbx":     "sphere-bytes",
		"textures/wood/oak.png": "oak-bytes",
		"readme.txt":            "hello",
		".hidden/secret.txt":    "nope",
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newAssetsRouter(t *testing.T, root string) *router.Router {
	t.Helper()
	rt := router.New()
	require.NoError(t, rt.Register(NewProvider(root)))
	return rt
}

func dispatch(t *testing.T, rt *router.Router, method, rawPath string) router.Response {
	t.Helper()
	u, err := url.Parse(rawPath)
	require.NoError(t, err)
	req, err := rt.Normalizer().Normalize(method, u.Path, u.Query(), nil)
	require.NoError(t, err)
	return rt.Dispatch(req)
}

func paths(t *testing.T, resp router.Response) []string {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.Status, "list failed: %v", resp.JSON)
	entries, ok := resp.JSON["assets"].([]*Asset)
	require.True(t, ok, "response carries no assets")
	out := make([]string, 0, len(entries))
	for _, a := range entries {
		out = append(out, a.Path)
	}
	return out
}

func TestProviderMetadata(t *testing.T) {
	p := NewProvider(t.TempDir())

	assert.Equal(t, "assets", p.Info().Name)
	assert.Equal(t, "/assets", p.Info().BasePath)
	assert.Len(t, p.Routes(), 2)
}

func TestListRoute(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/list")

	assert.Equal(t, []string{
		"meshes/cube.fbx",
		"meshes/sphere.fbx",
		"readme.txt",
		"textures/wood/oak.png",
	}, paths(t, resp))
	assert.Equal(t, 4, resp.JSON["count"])
	assert.Equal(t, false, resp.JSON["truncated"])
}

func TestListRouteFilter(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	tests := []struct {
		filter string
		want   []string
	}{
		{"*.txt", []string{"readme.txt"}},
		{"meshes/*", []string{"meshes/cube.fbx", "meshes/sphere.fbx"}},
		{"**/*.fbx", []string{"meshes/cube.fbx", "meshes/sphere.fbx"}},
		{"**/*.png", []string{"textures/wood/oak.png"}},
		{"*.exr", []string{}},
	}
	for _, tc := range tests {
		resp := dispatch(t, rt, http.MethodGet, "/assets/list?filter="+url.QueryEscape(tc.filter))
		assert.Equal(t, tc.want, paths(t, resp), "filter %q", tc.filter)
	}
}

func TestListRouteLimit(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/list?limit=2")

	assert.Len(t, paths(t, resp), 2)
	assert.Equal(t, true, resp.JSON["truncated"])
}

func TestListRouteRejectsBadLimit(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	for _, raw := range []string{"0", "-3", "many"} {
		resp := dispatch(t, rt, http.MethodGet, "/assets/list?limit="+raw)
		require.Equal(t, http.StatusBadRequest, resp.Status, "limit %q", raw)
		assert.Equal(t, router.ErrCodeValidation, resp.JSON["error"])
	}
}

func TestListRouteRejectsBadPattern(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/list?filter="+url.QueryEscape("[oops"))

	require.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, router.ErrCodeValidation, resp.JSON["error"])
}

func TestListRouteSkipsHidden(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/list?filter="+url.QueryEscape("**/secret.txt"))

	assert.Empty(t, paths(t, resp))
}

func TestInfoRoute(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/info?path="+url.QueryEscape("meshes/cube.fbx"))

	require.Equal(t, http.StatusOK, resp.Status)
	asset, ok := resp.JSON["asset"].(*Asset)
	require.True(t, ok)
	assert.Equal(t, "meshes/cube.fbx", asset.Path)
	assert.Equal(t, "cube.fbx", asset.Name)
	assert.Equal(t, "fbx", asset.Ext)
	assert.Equal(t, int64(len("cube-bytes")), asset.Size)
	assert.Equal(t, false, resp.JSON["is_dir"])
}

func TestInfoRouteDirectory(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/info?path=meshes")

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, true, resp.JSON["is_dir"])
	assert.Equal(t, 2, resp.JSON["entries"])
}

func TestInfoRouteRequiresPath(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/info")

	require.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, router.ErrCodeValidation, resp.JSON["error"])
}

func TestInfoRouteNotFound(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	resp := dispatch(t, rt, http.MethodGet, "/assets/info?path=missing.txt")

	require.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, ErrCodeAssetNotFound, resp.JSON["error"])
}

func TestInfoRouteRejectsEscapes(t *testing.T) {
	rt := newAssetsRouter(t, newContentRoot(t))

	for _, raw := range []string{"../outside.txt", "..", "/etc/passwd", "meshes/../../escape"} {
		resp := dispatch(t, rt, http.MethodGet, "/assets/info?path="+url.QueryEscape(raw))
		require.Equal(t, http.StatusBadRequest, resp.Status, "path %q", raw)
		assert.Equal(t, router.ErrCodeValidation, resp.JSON["error"])
	}
}

func TestConfine(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"meshes/cube.fbx", filepath.FromSlash("meshes/cube.fbx"), true},
		{"./readme.txt", "readme.txt", true},
		{"a/b/../c", filepath.FromSlash("a/c"), true},
		{"..", "", false},
		{"../up", "", false},
		{"a/../../up", "", false},
		{"/abs/path", "", false},
	}
	for _, tc := range tests {
		got, ok := confine(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("confine(%q) = %q, %v, want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
