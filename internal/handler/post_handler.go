package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kenyasue/kantancms/internal/blockdoc"
	"github.com/kenyasue/kantancms/internal/middleware"
	"github.com/kenyasue/kantancms/internal/model"
	"github.com/kenyasue/kantancms/internal/post"
)

// excerptLength は一覧レスポンスに含める抜粋の最大文字数。
const excerptLength = 150

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// List は記事一覧を返す。
	List(ctx context.Context, filter post.ListFilter) ([]*model.Post, error)
	// Get は指定IDの記事を返す。
	Get(ctx context.Context, id string) (*model.Post, error)
	// Tree は全記事を親子関係で組み立てたフォレストを返す。
	Tree(ctx context.Context) ([]*post.Node, error)
	// Create は新規記事を作成する。
	Create(ctx context.Context, input post.CreateInput) (*model.Post, error)
	// Update は既存記事を更新する。
	Update(ctx context.Context, id string, input post.UpdateInput) (*model.Post, error)
	// Delete は指定IDの記事を削除する。
	Delete(ctx context.Context, id string) error
}

// UnsupportedBlockRecorder は未対応ブロックの記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type UnsupportedBlockRecorder interface {
	RecordUnsupportedBlock(blockType string)
}

// PostHandler は記事管理のHTTPハンドラー。
type PostHandler struct {
	service   PostServiceInterface
	collector UnsupportedBlockRecorder
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, collector UnsupportedBlockRecorder) *PostHandler {
	return &PostHandler{
		service:   service,
		collector: collector,
	}
}

// postRequest は記事作成・更新リクエストのボディ。
type postRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

// postResponse は記事のAPIレスポンス。
type postResponse struct {
	ID         string    `json:"id"`
	ParentID   string    `json:"parentId,omitempty"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// postSummaryResponse は一覧用の記事レスポンス。
// 本文の代わりにプレーンテキストの抜粋を含む。
type postSummaryResponse struct {
	ID         string    `json:"id"`
	ParentID   string    `json:"parentId,omitempty"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// treeNodeResponse は記事ツリーのノードレスポンス。
type treeNodeResponse struct {
	ID       string             `json:"id"`
	ParentID string             `json:"parentId,omitempty"`
	Title    string             `json:"title"`
	Children []treeNodeResponse `json:"children"`
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:         p.ID,
		ParentID:   p.ParentID,
		UserID:     p.UserID,
		Title:      p.Title,
		Content:    p.Content,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
}

func toPostSummaryResponse(p *model.Post) postSummaryResponse {
	return postSummaryResponse{
		ID:         p.ID,
		ParentID:   p.ParentID,
		UserID:     p.UserID,
		Title:      p.Title,
		Excerpt:    blockdoc.Excerpt(p.Content, excerptLength),
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
}

func toTreeNodeResponse(n *post.Node) treeNodeResponse {
	children := make([]treeNodeResponse, len(n.Children))
	for i, c := range n.Children {
		children[i] = toTreeNodeResponse(c)
	}
	return treeNodeResponse{
		ID:       n.ID,
		ParentID: n.ParentID,
		Title:    n.Title,
		Children: children,
	}
}

// ListPosts は記事一覧を返す。
// GET /api/posts?parentId=xxx
// parentId=null でルート記事のみに絞り込む。
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter := post.ListFilter{}
	if r.URL.Query().Has("parentId") {
		filter.ByParent = true
		if v := r.URL.Query().Get("parentId"); v != "null" {
			filter.ParentID = v
		}
	}

	posts, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]postSummaryResponse, len(posts))
	for i, p := range posts {
		results[i] = toPostSummaryResponse(p)
	}
	writeJSON(w, http.StatusOK, results)
}

// GetPostTree は全記事の親子ツリーを返す。
// GET /api/posts/tree
func (h *PostHandler) GetPostTree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.service.Tree(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]treeNodeResponse, len(roots))
	for i, n := range roots {
		results[i] = toTreeNodeResponse(n)
	}
	writeJSON(w, http.StatusOK, results)
}

// GetPost は記事詳細を返す。
// GET /api/posts/:id
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// GetPostHTML は記事本文をHTMLにレンダリングして返す。
// GET /api/posts/:id/html
func (h *PostHandler) GetPostHTML(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	doc := blockdoc.Parse(p.Content)
	rendered := blockdoc.Render(doc)

	if h.collector != nil {
		for _, block := range rendered {
			if block.Unsupported {
				h.collector.RecordUnsupportedBlock(block.Type)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, block := range rendered {
		w.Write([]byte(block.HTML))
		w.Write([]byte("\n"))
	}
}

// CreatePost は記事を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.service.Create(r.Context(), post.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		UserID:   principal.ID,
		ParentID: req.ParentID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(created))
}

// UpdatePost は記事を更新する。
// PUT /api/posts/:id
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	updated, err := h.service.Update(r.Context(), postID, post.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(updated))
}

// DeletePost は記事を削除する。
// DELETE /api/posts/:id
// 子記事は削除せず、親を失ったままツリー構築時にルートへ昇格する。
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), postID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
