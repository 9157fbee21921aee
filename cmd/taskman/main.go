// Command taskman はタスク管理APIサーバーを起動する。
//
//	taskman serve              APIサーバーを起動する（デフォルト）
//	taskman migrate [up]       未適用のマイグレーションを適用する
//	taskman migrate down [N]   直近N件（デフォルト1件）のマイグレーションを取り消す
//	taskman healthcheck        ローカルの /health を確認する
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/hitoshi/taskman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
