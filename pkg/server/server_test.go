package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/document"
	"github.com/matzehuels/fetchtree/pkg/node"
	"github.com/matzehuels/fetchtree/pkg/project"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mem, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	return New(Config{Cache: mem})
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["ok"] != true || m["project"] != false {
		t.Errorf("body = %v", m)
	}
}

func TestProjectEmpty(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/project", "/project/outline", "/project/export"} {
		rec := do(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
		if m := decode(t, rec); m["code"] != "NO_ACTIVE_PROJECT" {
			t.Errorf("GET %s code = %v", path, m["code"])
		}
	}
}

func TestImportAndShow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/import?format=json&name=demo", "", `{"a":1,"b":[2,3]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body)
	}
	m := decode(t, rec)
	if m["success"] != true || m["name"] != "demo" || m["format"] != "json" {
		t.Errorf("import body = %v", m)
	}

	rec = do(t, s, http.MethodGet, "/project", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("project status = %d", rec.Code)
	}
	var p project.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	want := node.NewObject("",
		node.NewLeaf("a", "1", node.Number),
		node.NewArray("b", node.NewLeaf("", "2", node.Number), node.NewLeaf("", "3", node.Number)),
	)
	if !node.Equal(p.Root, want) {
		t.Errorf("root = %v, want %v", p.Root, want)
	}

	rec = do(t, s, http.MethodGet, "/project/outline", "", "")
	if !strings.Contains(rec.Body.String(), "└── b [2]") {
		t.Errorf("outline = %q", rec.Body.String())
	}
}

func TestImportContentType(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/import", "application/yaml; charset=utf-8", "a: 1\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := s.Workspace().Active().Format; got != document.FormatYAML {
		t.Errorf("format = %q, want yaml", got)
	}
}

func TestImportFailureKeepsProject(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/import", "", `{"a":1}`); rec.Code != http.StatusOK {
		t.Fatalf("seed import status = %d", rec.Code)
	}
	before := s.Workspace().Active()

	rec := do(t, s, http.MethodPost, "/import?format=json", "", `{"a":`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if m := decode(t, rec); m["success"] != false {
		t.Errorf("body = %v", m)
	}
	if s.Workspace().Active() != before {
		t.Error("failed import replaced the active project")
	}
}

func TestImportBadFormat(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/import?format=xml", "", `<a/>`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if m := decode(t, rec); m["code"] != "INVALID_FORMAT" {
		t.Errorf("code = %v", m["code"])
	}
}

func TestEncodeCaches(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/import", "", `{"a":1,"b":[2,3]}`)

	first := do(t, s, http.MethodGet, "/project/export?format=yaml", "", "")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", first.Code, first.Body)
	}
	if ct := first.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := first.Header().Get(cacheHeader); got != "miss" {
		t.Errorf("first %s = %q, want miss", cacheHeader, got)
	}
	root, err := document.Parse(first.Body.Bytes(), document.FormatYAML)
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if !node.Equal(root, s.Workspace().Active().Root) {
		t.Errorf("exported tree differs: %v", root)
	}

	second := do(t, s, http.MethodGet, "/project/export?format=yaml", "", "")
	if got := second.Header().Get(cacheHeader); got != "hit" {
		t.Errorf("second %s = %q, want hit", cacheHeader, got)
	}
	if second.Body.String() != first.Body.String() {
		t.Error("cached body differs")
	}

	def := do(t, s, http.MethodGet, "/project/export", "", "")
	if ct := def.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("default Content-Type = %q", ct)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/import", "", `[1,2]`)

	rec := do(t, s, http.MethodGet, "/project/export?format=toml", "", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if m := decode(t, rec); m["code"] != "UNSUPPORTED" {
		t.Errorf("code = %v", m["code"])
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.json")
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Logf("no symlink support: %v", err)
	}
	s := New(Config{ExportDir: dir})

	rec := do(t, s, http.MethodPost, "/project/export", "", `{"destination":"out.json"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("no project: status = %d, want 404", rec.Code)
	}
	if m := decode(t, rec); m["success"] != false || m["code"] != "NO_ACTIVE_PROJECT" {
		t.Errorf("no project: body = %v", m)
	}

	do(t, s, http.MethodPost, "/import", "", `{"a":1}`)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"relative file", `{"destination":"out.json"}`, http.StatusOK, ""},
		{"absolute path", `{"destination":"` + victim + `"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"parent escape", `{"destination":"../victim.json"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"nested escape", `{"destination":"a/../../victim.json"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"file url", `{"destination":"file://` + victim + `"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"stdout", `{"destination":"-"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"symlink escape", `{"destination":"link/victim.json"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown scheme", `{"destination":"ftp://host/x.json"}`, http.StatusUnprocessableEntity, "DESTINATION_UNWRITABLE"},
		{"s3 unconfigured", `{"destination":"s3://bucket/x.json"}`, http.StatusUnprocessableEntity, "DESTINATION_UNWRITABLE"},
		{"missing dir", `{"destination":"nope/x.json"}`, http.StatusUnprocessableEntity, "DESTINATION_UNWRITABLE"},
		{"bad json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", `{"destination":"out.json","format":"ini"}`, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "symlink escape" {
				if _, err := os.Lstat(filepath.Join(dir, "link")); err != nil {
					t.Skip("symlink not created")
				}
			}
			rec := do(t, s, http.MethodPost, "/project/export", "application/json", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			m := decode(t, rec)
			if tt.code == "" {
				if m["success"] != true {
					t.Errorf("body = %v", m)
				}
				return
			}
			if m["code"] != tt.code {
				t.Errorf("code = %v, want %s", m["code"], tt.code)
			}
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"a": 1`) {
		t.Errorf("written file = %q", data)
	}
	if _, err := os.Stat(victim); !os.IsNotExist(err) {
		t.Errorf("file written outside the export directory: %v", err)
	}
}

func TestExportWithoutExportDir(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/import", "", `{"a":1}`)

	target := filepath.Join(t.TempDir(), "out.json")
	for _, dest := range []string{target, "out.json"} {
		rec := do(t, s, http.MethodPost, "/project/export", "", `{"destination":"`+dest+`"}`)
		if m := decode(t, rec); m["success"] != false || m["code"] != "DESTINATION_UNWRITABLE" {
			t.Errorf("%s: body = %v", dest, m)
		}
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("export wrote %s: %v", target, err)
	}
}

func TestClear(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/import", "", `{"a":1}`)

	rec := do(t, s, http.MethodDelete, "/project", "", "")
	if m := decode(t, rec); m["cleared"] != true {
		t.Errorf("body = %v", m)
	}
	if s.Workspace().HasProject() {
		t.Error("workspace still has a project")
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor("SOMETHING_ELSE"); got != http.StatusInternalServerError {
		t.Errorf("statusFor(unknown) = %d", got)
	}
}
