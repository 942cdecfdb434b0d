package di

import (
	"github.com/aristath/draftboard/internal/modules/draft"
	"github.com/aristath/draftboard/internal/modules/history"
	"github.com/aristath/draftboard/internal/modules/players"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories on the container's database
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	conn := container.DB.Conn()

	container.PlayerRepo = players.NewRepository(conn, log)
	container.HistoryRepo = history.NewRepository(conn, log)
	container.SettingsRepo = settings.NewRepository(conn, log)
	container.DraftRepo = draft.NewRepository(conn, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
