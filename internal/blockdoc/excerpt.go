package blockdoc

import (
	"encoding/json"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy はインラインマークアップを全て除去するポリシー。
// bluemondayのPolicyは並行利用に対して安全なためパッケージ内で共有する。
var stripPolicy = bluemonday.StrictPolicy()

// ellipsis は切り詰め時に付加する省略記号。
const ellipsis = "…"

// Excerpt はシリアライズ文字列から長さ制限付きのプレーンテキスト抜粋を生成する。
//
// 構造化パースに成功した場合は最初のテキスト系ブロック（段落を優先）から
// インラインマークアップを除去したテキストを抜き出す。
// パースに失敗した場合は元文字列をそのまま切り詰める。
// 元テキストがmaxLenを超える場合はmaxLen文字＋省略記号を返す。
func Excerpt(raw string, maxLen int) string {
	doc, ok := parseStrict(raw)
	if !ok {
		return truncate(raw, maxLen)
	}

	text := firstText(doc)
	return truncate(strings.TrimSpace(stripPolicy.Sanitize(text)), maxLen)
}

// firstText は抜粋元となるテキストを選ぶ。段落ブロックを最優先とし、
// 段落がない場合は先頭から順にテキストを持つブロックを探す。
func firstText(doc *Document) string {
	for _, block := range doc.Blocks {
		if block.Type == TypeParagraph {
			if text := blockText(block); text != "" {
				return text
			}
		}
	}

	for _, block := range doc.Blocks {
		if text := blockText(block); text != "" {
			return text
		}
	}

	return ""
}

// blockText はブロックからテキスト内容を取り出す。
// テキストを持たないブロック（画像等）やデータ不正の場合は空文字を返す。
func blockText(block Block) string {
	switch block.Type {
	case TypeParagraph:
		var data ParagraphData
		if err := json.Unmarshal(block.Data, &data); err != nil {
			return ""
		}
		return data.Text
	case TypeHeader:
		var data HeaderData
		if err := json.Unmarshal(block.Data, &data); err != nil {
			return ""
		}
		return data.Text
	case TypeQuote:
		var data QuoteData
		if err := json.Unmarshal(block.Data, &data); err != nil {
			return ""
		}
		return data.Text
	case TypeList:
		var data ListData
		if err := json.Unmarshal(block.Data, &data); err != nil {
			return ""
		}
		return strings.Join(data.Items, " ")
	case TypeCode:
		var data CodeData
		if err := json.Unmarshal(block.Data, &data); err != nil {
			return ""
		}
		return data.Code
	default:
		return ""
	}
}

// truncate はルーン単位でmaxLenに切り詰め、超過時のみ省略記号を付ける。
func truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + ellipsis
}
