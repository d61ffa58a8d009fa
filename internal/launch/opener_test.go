package launch

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type startCall struct {
	name string
	args []string
}

func fakeBrowser(goos, browserEnv string, fail map[string]bool) (*Browser, *[]startCall) {
	var calls []startCall
	b := NewBrowser()
	b.goos = goos
	b.getenv = func(key string) string {
		if key == "BROWSER" {
			return browserEnv
		}
		return ""
	}
	b.start = func(name string, args ...string) (func() error, error) {
		calls = append(calls, startCall{name: name, args: args})
		if fail[name] {
			return nil, errors.New("not found")
		}
		return func() error { return nil }, nil
	}
	return b, &calls
}

func TestBrowser_Commands(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  string
		want [][]string
	}{
		{"linux", "linux", "", [][]string{{"xdg-open", "https://a"}}},
		{"darwin", "darwin", "", [][]string{{"open", "https://a"}}},
		{"windows", "windows", "", [][]string{{"cmd", "/c", "start", "", "https://a"}}},
		{
			"browser env first",
			"linux",
			"firefox --new-tab:chromium",
			[][]string{{"firefox", "--new-tab", "https://a"}, {"chromium", "https://a"}, {"xdg-open", "https://a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := fakeBrowser(tt.goos, tt.env, nil)
			if got := b.Commands("https://a"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Commands() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrowser_OpenFallsBack(t *testing.T) {
	b, calls := fakeBrowser("linux", "missing-browser", map[string]bool{"missing-browser": true})
	if err := b.Open("https://a"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(*calls) != 2 || (*calls)[1].name != "xdg-open" {
		t.Errorf("calls = %+v", *calls)
	}
}

func TestBrowser_OpenNoLauncher(t *testing.T) {
	b, _ := fakeBrowser("linux", "", map[string]bool{"xdg-open": true})
	err := b.Open("https://a")
	if !errors.Is(err, ErrNoBrowser) {
		t.Errorf("Open() error = %v, want ErrNoBrowser", err)
	}
}

func TestBrowser_OpenEmpty(t *testing.T) {
	b, calls := fakeBrowser("linux", "", nil)
	if err := b.Open("  "); err == nil {
		t.Error("empty address accepted")
	}
	if len(*calls) != 0 {
		t.Errorf("calls = %+v", *calls)
	}
}

func TestBrowser_Resolve(t *testing.T) {
	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "mine.html"), []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		base    string
		address string
		want    string
		wantErr bool
	}{
		{name: "external passes through", base: "http://127.0.0.1:9", address: "https://kimi.moonshot.cn/", want: "https://kimi.moonshot.cn/"},
		{name: "local page via web server", base: "http://127.0.0.1:9", address: "guide.html", want: "http://127.0.0.1:9/guide.html"},
		{name: "trailing slash on base", base: "http://127.0.0.1:9/", address: "/guide.html", want: "http://127.0.0.1:9/guide.html"},
		{name: "asset dir without server", address: "mine.html", want: "file://" + filepath.ToSlash(filepath.Join(assetDir, "mine.html"))},
		{name: "embedded page without server", address: "guide.html", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBrowser(WithBaseURL(func() string { return tt.base }), WithAssetDir(assetDir))
			got, err := b.Resolve(tt.address)
			if tt.wantErr {
				if !errors.Is(err, ErrUnresolved) {
					t.Errorf("Resolve(%q) error = %v, want ErrUnresolved", tt.address, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.address, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestBrowser_OpenLocalPageGetsAbsoluteURL(t *testing.T) {
	b, calls := fakeBrowser("linux", "", nil)
	b.baseURL = func() string { return "http://127.0.0.1:4321" }

	if err := b.Open("guide.html"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := []startCall{{name: "xdg-open", args: []string{"http://127.0.0.1:4321/guide.html"}}}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("calls = %+v, want %+v", *calls, want)
	}
}

func TestBrowser_OpenUnreachableLocalPage(t *testing.T) {
	b, calls := fakeBrowser("linux", "", nil)
	if err := b.Open("guide.html"); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Open() error = %v, want ErrUnresolved", err)
	}
	if len(*calls) != 0 {
		t.Errorf("launcher started for an unreachable page: %+v", *calls)
	}
}
