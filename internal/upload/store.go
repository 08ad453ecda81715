// Package upload は画像ファイルのローカル保存を提供する。
package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kenyasue/kantancms/internal/model"
)

// allowedTypes は受け付けるMIMEタイプと保存時の拡張子の対応。
// 画像以外のアップロードはINVALID_UPLOAD_TYPEとして拒否する。
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store はアップロードされたファイルの保存先インターフェース。
type Store interface {
	// Save はファイルを保存し、公開URLを返す。
	Save(ctx context.Context, r io.Reader, contentType string) (string, error)
	// Delete は公開URLに対応するファイルを削除する。
	// 対象が存在しない場合もエラーとしない。
	Delete(ctx context.Context, url string) error
}

// LocalStore はローカルファイルシステムへのStore実装。
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore はLocalStoreを生成し、保存先ディレクトリを作成する。
// baseURLは公開URLのプレフィックス（例: /uploads）。
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗しました: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save はファイルを保存し、公開URLを返す。
// ファイル名は衝突しないようタイムスタンプと乱数から生成する。
func (s *LocalStore) Save(ctx context.Context, r io.Reader, contentType string) (string, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", model.NewInvalidUploadTypeError(contentType)
	}

	name, err := uniqueName(ext)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("ファイルの作成に失敗しました: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("ファイルのクローズに失敗しました: %w", err)
	}

	url := s.baseURL + "/" + name
	slog.Info("file uploaded",
		slog.String("path", dst),
		slog.String("url", url),
	)
	return url, nil
}

// Delete は公開URLに対応するファイルを削除する。
// ディレクトリ外を指すURLは無視する。対象が存在しない場合もエラーとしない。
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if url == "" || !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}

	name := path.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	if name == "." || name == "/" || name == ".." {
		return nil
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ファイルの削除に失敗しました: %w", err)
	}
	return nil
}

// uniqueName は「ミリ秒タイムスタンプ-乱数16進.拡張子」形式のファイル名を生成する。
func uniqueName(ext string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数の生成に失敗しました: %w", err)
	}
	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}

// compile-time interface check
var _ Store = (*LocalStore)(nil)
