package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kenyasue/kantancms/internal/model"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore returned error: %v", err)
	}
	return store
}

func TestSave_AllowedType_ReturnsPublicURL(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), strings.NewReader("fake-png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, want .png extension", url)
	}

	// ファイルが実際に書き込まれていること
	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(store.dir, name))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Errorf("saved content = %q", data)
	}
}

func TestSave_DisallowedType_ReturnsInvalidUploadType(t *testing.T) {
	store := newTestStore(t)

	for _, ct := range []string{"text/html", "application/pdf", "image/svg+xml", ""} {
		_, err := store.Save(context.Background(), strings.NewReader("x"), ct)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidUploadType {
			t.Errorf("Save(%q) err = %v, want INVALID_UPLOAD_TYPE", ct, err)
		}
	}
}

func TestSave_SameContent_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	u1, err := store.Save(context.Background(), strings.NewReader("same"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	u2, err := store.Save(context.Background(), strings.NewReader("same"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if u1 == u2 {
		t.Errorf("urls should differ: %q", u1)
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save(context.Background(), strings.NewReader("x"), "image/gif")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	name := strings.TrimPrefix(url, "/uploads/")
	if _, err := os.Stat(filepath.Join(store.dir, name)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
}

func TestDelete_MissingFile_NoError(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete(context.Background(), "/uploads/no-such-file.png"); err != nil {
		t.Errorf("Delete of missing file should not error, got %v", err)
	}
}

func TestDelete_ForeignURL_Ignored(t *testing.T) {
	store := newTestStore(t)

	// 保存ディレクトリ外を指すURLには触れない
	for _, url := range []string{"", "https://example.com/a.png", "/other/a.png", "/uploads/../secret"} {
		if err := store.Delete(context.Background(), url); err != nil {
			t.Errorf("Delete(%q) = %v, want nil", url, err)
		}
	}
}
