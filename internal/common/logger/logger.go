// Package logger はzerologの薄いラッパーです
// 本番環境ではInfoレベルのJSON、それ以外ではDebugレベルのコンソール出力を使います
package logger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init はデプロイ環境に応じてグローバルロガーを初期化します
func Init(env string) {
	if env == "PRODUCTION" {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
