// Package menubot implements the interactive Telegram menu bot: command
// handlers, inline-keyboard menus, and their authorization middleware.
package menubot

import (
	"log/slog"

	"github.com/betbog/betbog/internal/config"
	"github.com/betbog/betbog/internal/database"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
}
