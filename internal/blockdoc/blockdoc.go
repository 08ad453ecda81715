// Package blockdoc はブロック構造のコンテンツフォーマット（EditorJS形式）の
// パース・レンダリング・抜粋生成を提供する。
//
// 記事本文はストレージ上ではシリアライズ文字列として保存されており、
// 構造化されたJSONの場合もあれば、移行前のプレーンテキストの場合もある。
// このパッケージはどちらの入力でも必ずレンダリング可能な結果を返す。
// パース失敗でエラーを返すことはなく、段落1つのフォールバック文書に退避する。
package blockdoc

import "encoding/json"

// ブロックタイプの定義。
const (
	TypeHeader    = "header"
	TypeParagraph = "paragraph"
	TypeList      = "list"
	TypeQuote     = "quote"
	TypeCode      = "code"
	TypeImage     = "image"
)

// Document はブロックドキュメント全体を表す。
// TimeとVersionは編集時のメタ情報であり、レンダリングには影響しない。
type Document struct {
	Time    int64   `json:"time,omitempty"`
	Version string  `json:"version,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Block は型付きコンテンツブロックを表す。
// Dataのスキーマはブロックタイプごとに異なるため、
// レンダリング時まで遅延デコードする。
type Block struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ブロックタイプごとのdataスキーマ。

// HeaderData はheaderブロックのデータ。
type HeaderData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ParagraphData はparagraphブロックのデータ。
type ParagraphData struct {
	Text string `json:"text"`
}

// ListData はlistブロックのデータ。
type ListData struct {
	Style string   `json:"style"` // "ordered" または "unordered"
	Items []string `json:"items"`
}

// QuoteData はquoteブロックのデータ。
type QuoteData struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

// CodeData はcodeブロックのデータ。
type CodeData struct {
	Code string `json:"code"`
}

// ImageData はimageブロックのデータ。
type ImageData struct {
	File    ImageFile `json:"file"`
	Caption string    `json:"caption,omitempty"`
}

// ImageFile はimageブロックが参照するファイル情報。
type ImageFile struct {
	URL string `json:"url"`
}

// Parse はシリアライズ文字列をDocumentに変換する。
//
// 厳密なJSONパースを試み、失敗した場合やブロック配列を持たない場合は
// 入力文字列をそのまま本文とする段落1つのフォールバック文書を返す。
// 移行前のプレーンテキスト記事が必ずレンダリング可能であることを保証する。
// エラーは返さない。
func Parse(raw string) *Document {
	doc, ok := parseStrict(raw)
	if !ok {
		return fallbackDocument(raw)
	}
	return doc
}

// parseStrict は厳密なJSONパースを試みる。
// ブロック配列を持つ正しい文書の場合のみokにtrueを返す。
func parseStrict(raw string) (*Document, bool) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc.Blocks == nil {
		return nil, false
	}
	return &doc, true
}

// Serialize はDocumentをストレージ用のJSON文字列に変換する。
func Serialize(doc *Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fallbackDocument はプレーンテキストを包む段落1つの文書を生成する。
func fallbackDocument(text string) *Document {
	data, _ := json.Marshal(ParagraphData{Text: text})
	return &Document{
		Blocks: []Block{
			{Type: TypeParagraph, Data: data},
		},
	}
}
