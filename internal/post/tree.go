// Package post は記事管理のドメインロジックと階層ツリー構築を提供する。
package post

import (
	"html"
	"html/template"
	"strings"

	"github.com/kenyasue/kantancms/internal/model"
)

// Node は子記事のリストを持つ記事ツリーのノード。
type Node struct {
	*model.Post
	Children []*Node
}

// BuildForest はフラットな記事リストから親子関係のフォレストを構築する。
//
// 1パス目で全記事をIDキーのマップに登録し、2パス目で入力順に
// 親のChildrenへ追加する。子の並び順は入力順に対して安定する
// （ストアのデフォルト順＝作成日時降順がそのまま保たれる）。
// 参照によるリンクではなくIDによるリンクのため、相互参照の所有権問題は生じない。
//
// 親IDが存在しない記事を指している場合は黙ってルートに昇格させ、
// 決して落とさない。サイクル（A→B→A）はこの時点では検出されないため、
// フォレストを再帰的に辿る処理は必ずvisitedセットを持つこと（RenderNav参照）。
func BuildForest(posts []*model.Post) []*Node {
	nodes := make(map[string]*Node, len(posts))
	for _, p := range posts {
		nodes[p.ID] = &Node{Post: p}
	}

	var roots []*Node
	for _, p := range posts {
		node := nodes[p.ID]
		if parent, ok := nodes[p.ParentID]; ok && p.ParentID != "" && p.ParentID != p.ID {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots
}

// CountNodes はフォレストの総ノード数を返す。visitedセットでサイクルから防御する。
func CountNodes(nodes []*Node) int {
	visited := make(map[string]bool)
	return countNodes(nodes, visited)
}

func countNodes(nodes []*Node, visited map[string]bool) int {
	count := 0
	for _, node := range nodes {
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true
		count += 1 + countNodes(node.Children, visited)
	}
	return count
}

// RenderNav はフォレストをサイドバーナビゲーションのHTMLに変換する。
//
// ネストの深さ＝ツリーの深さとしてul/liを入れ子にし、
// 現在のリクエストパスに一致するノードにはactiveクラスを付ける。
// 並び順はBuildForestの出力順を保持する。
// 不正データでサイクルが形成されていても停止することを保証するため、
// visitedセットを持ち再訪問ノードでは降下を打ち切る。
func RenderNav(nodes []*Node, currentPath string) template.HTML {
	if len(nodes) == 0 {
		return ""
	}

	var sb strings.Builder
	visited := make(map[string]bool)
	renderNavLevel(&sb, nodes, currentPath, visited)
	return template.HTML(sb.String())
}

func renderNavLevel(sb *strings.Builder, nodes []*Node, currentPath string, visited map[string]bool) {
	sb.WriteString(`<ul class="post-nav">`)
	for _, node := range nodes {
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true

		href := "/posts/" + node.ID
		class := ""
		if href == currentPath {
			class = ` class="active"`
		}

		sb.WriteString("<li>")
		sb.WriteString(`<a href="` + html.EscapeString(href) + `"` + class + `>`)
		sb.WriteString(html.EscapeString(node.Title))
		sb.WriteString("</a>")
		if len(node.Children) > 0 {
			renderNavLevel(sb, node.Children, currentPath, visited)
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")
}
