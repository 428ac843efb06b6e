package migrations

import "embed"

// FS содержит SQL миграции схемы уведомлений.
//
//go:embed *.sql
var FS embed.FS
