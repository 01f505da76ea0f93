package telegram

import (
	"fmt"

	"github.com/blockedby/tg-grabber/internal/config"
	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewProtoClient creates an authorized gotgproto client from configuration.
// The exported string session is the primary credential; when it is absent
// the sqlite session database is used instead, which lets cmd/tg-auth and
// the run binary share one session.
func NewProtoClient(cfg *config.Config) (*gotgproto.Client, error) {
	var session sessionMaker.SessionConstructor = sessionMaker.StringSession(cfg.TGSessionStr)
	if cfg.TGSessionStr == "" {
		db, err := gorm.Open(sqlite.Open(cfg.SessionDB), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open session database %s: %w", cfg.SessionDB, err)
		}
		session = sessionMaker.SqlSession(db.Dialector)
	}

	client, err := gotgproto.NewClient(
		cfg.TGApiID,
		cfg.TGApiHash,
		gotgproto.ClientTypePhone(""), // empty = use session
		&gotgproto.ClientOpts{
			Session:          session,
			DisableCopyright: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return client, nil
}
