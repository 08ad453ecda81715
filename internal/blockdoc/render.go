package blockdoc

import (
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strings"
)

// Rendered は1ブロックのレンダリング結果を表す。
// Unsupportedは未知のタイプまたはデータ不正により
// プレースホルダーに退避したことを示す（メトリクス計上用）。
type Rendered struct {
	Type        string
	HTML        template.HTML
	Unsupported bool
}

// Render は文書の各ブロックをHTMLフラグメントに変換する。
// ブロックの順序を保持し、1ブロックの不正が他のブロックの
// レンダリングを妨げないことを保証する（ブロック単位の障害分離）。
//
// text系フィールドはオペレーターが編集画面で作成した限定的な
// インラインマークアップを含むため、エスケープせずそのまま出力する。
// 書き込みが認証済みオペレーターに限定されていることを前提とした
// 信頼境界であり、匿名入力をこの経路に流してはならない。
// コード・キャプション・altテキストはエスケープする。
func Render(doc *Document) []Rendered {
	results := make([]Rendered, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		results = append(results, renderBlock(block))
	}
	return results
}

// RenderHTML は文書全体を連結した1つのHTMLフラグメントとして返す。
func RenderHTML(doc *Document) template.HTML {
	var sb strings.Builder
	for _, r := range Render(doc) {
		sb.WriteString(string(r.HTML))
		sb.WriteString("\n")
	}
	return template.HTML(sb.String())
}

// renderBlock はブロックタイプに応じたレンダラーにディスパッチする。
// 未知のタイプはプレースホルダーに退避する。
func renderBlock(block Block) Rendered {
	switch block.Type {
	case TypeHeader:
		return renderHeader(block)
	case TypeParagraph:
		return renderParagraph(block)
	case TypeList:
		return renderList(block)
	case TypeQuote:
		return renderQuote(block)
	case TypeCode:
		return renderCode(block)
	case TypeImage:
		return renderImage(block)
	default:
		return unsupported(block.Type)
	}
}

// unsupported は未知タイプ・不正データ用のプレースホルダーを生成する。
func unsupported(blockType string) Rendered {
	return Rendered{
		Type:        blockType,
		HTML:        template.HTML(fmt.Sprintf(`<p class="unsupported-block">Unsupported block type: %s</p>`, html.EscapeString(blockType))),
		Unsupported: true,
	}
}

func renderHeader(block Block) Rendered {
	var data HeaderData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	level := data.Level
	if level < 1 || level > 6 {
		// 範囲外のレベルはh3に退避する
		level = 3
	}

	return Rendered{
		Type: block.Type,
		HTML: template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, data.Text, level)),
	}
}

func renderParagraph(block Block) Rendered {
	var data ParagraphData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	return Rendered{
		Type: block.Type,
		HTML: template.HTML("<p>" + data.Text + "</p>"),
	}
}

func renderList(block Block) Rendered {
	var data ListData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	tag := "ul"
	if data.Style == "ordered" {
		tag = "ol"
	}

	var sb strings.Builder
	sb.WriteString("<" + tag + ">")
	for _, item := range data.Items {
		sb.WriteString("<li>" + item + "</li>")
	}
	sb.WriteString("</" + tag + ">")

	return Rendered{
		Type: block.Type,
		HTML: template.HTML(sb.String()),
	}
}

func renderQuote(block Block) Rendered {
	var data QuoteData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	var sb strings.Builder
	sb.WriteString("<blockquote><p>" + data.Text + "</p>")
	if data.Caption != "" {
		sb.WriteString("<cite>" + html.EscapeString(data.Caption) + "</cite>")
	}
	sb.WriteString("</blockquote>")

	return Rendered{
		Type: block.Type,
		HTML: template.HTML(sb.String()),
	}
}

func renderCode(block Block) Rendered {
	var data CodeData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	return Rendered{
		Type: block.Type,
		HTML: template.HTML("<pre><code>" + html.EscapeString(data.Code) + "</code></pre>"),
	}
}

func renderImage(block Block) Rendered {
	var data ImageData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return unsupported(block.Type)
	}

	if data.File.URL == "" {
		return Rendered{
			Type: block.Type,
			HTML: template.HTML(`<p class="unsupported-block">Image not available</p>`),
		}
	}

	alt := data.Caption
	if alt == "" {
		alt = "Image"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<figure><img src="%s" alt="%s">`,
		html.EscapeString(data.File.URL), html.EscapeString(alt)))
	if data.Caption != "" {
		sb.WriteString("<figcaption>" + html.EscapeString(data.Caption) + "</figcaption>")
	}
	sb.WriteString("</figure>")

	return Rendered{
		Type: block.Type,
		HTML: template.HTML(sb.String()),
	}
}
