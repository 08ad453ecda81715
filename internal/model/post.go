package model

import "time"

// Post は階層構造を持つ記事を表す。
// Contentはブロックドキュメントのシリアライズ文字列で、
// ストレージ層では不透明な文字列として扱う（解釈はblockdocパッケージが行う）。
type Post struct {
	ID         string
	ParentID   string // 親記事のID。ルート記事の場合は空文字。
	UserID     string // 作成者のID。作成後は変更不可。
	Title      string
	Content    string
	CreatedAt  time.Time
	ModifiedAt time.Time
}
