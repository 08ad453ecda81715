package app

import (
	"bytes"
	"testing"
)

// TestRun_ServeCommand_OpensDBConnection はserveコマンドがDB接続を試みることを検証する。
// テスト環境ではDB接続が失敗するため、エラーが返ることを許容する。
func TestRun_ServeCommand_OpensDBConnection(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	// DB接続が存在しないため、エラーが返ることを期待する。
	if err == nil {
		// CI/ローカルにDBがある場合はサーバーが即時終了しないため、ここに到達する可能性がある。
		// しかし通常テスト環境ではDB接続が失敗する。
		t.Log("Run(serve) succeeded - DB is available in test environment")
	}
}

// TestRun_MigrateCommand_RequiresDB はmigrateコマンドがDB接続を試みることを検証する。
func TestRun_MigrateCommand_RequiresDB(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"migrate"})
	if err == nil {
		t.Log("Run(migrate) succeeded - DB is available in test environment")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

// TestRun_HealthcheckWithoutServer_ReturnsError はサーバー未起動時に
// healthcheckサブコマンドがエラーを返すことを検証する。
func TestRun_HealthcheckWithoutServer_ReturnsError(t *testing.T) {
	t.Setenv("SERVER_PORT", "59999")

	var buf bytes.Buffer
	err := Run(&buf, []string{"healthcheck"})
	if err == nil {
		t.Fatal("healthcheck without a running server should return error")
	}
}
