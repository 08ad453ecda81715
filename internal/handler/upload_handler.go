package handler

import (
	"net/http"

	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/upload"
)

// maxUploadSize はアップロードリクエストの最大サイズ。
const maxUploadSize = 10 << 20

// UploadRecorder はアップロードの記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type UploadRecorder interface {
	RecordUpload(contentType string)
}

// UploadHandler は画像アップロードのHTTPハンドラー。
// 記事エディタからの画像添付で使用される。
type UploadHandler struct {
	store     upload.Store
	collector UploadRecorder
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(store upload.Store, collector UploadRecorder) *UploadHandler {
	return &UploadHandler{
		store:     store,
		collector: collector,
	}
}

// uploadResponse はアップロード成功時のレスポンス。
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload は画像ファイルのアップロードを処理する。
// POST /api/upload (multipart/form-data, フィールド名: image)
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "フォームの解析に失敗しました。",
			Category: "validation",
			Action:   "multipart/form-data形式でリクエストしてください。",
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("image", "画像ファイルが含まれていません"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	url, err := h.store.Save(r.Context(), file, contentType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordUpload(contentType)
	}

	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
