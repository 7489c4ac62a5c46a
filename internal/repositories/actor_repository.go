package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"talent-chat/internal/models"
)

var ErrActorNotFound = errors.New("actor not found")

// ActorRepository abstracts actor lookups.
type ActorRepository interface {
	GetActor(ctx context.Context, actorID int64) (models.Actor, error)
	BulkActors(ctx context.Context, actorIDs []int64) ([]models.Actor, error)
}

// ActorRepo is a sqlx implementation of ActorRepository.
type ActorRepo struct {
	db *sqlx.DB
}

// NewActorRepo constructs an ActorRepo.
func NewActorRepo(db *sqlx.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

type actorRow struct {
	ID           int64            `db:"id"`
	Kind         models.ActorKind `db:"kind"`
	DisplayName  string           `db:"display_name"`
	CoinBalance  int64            `db:"coin_balance"`
	MessageRate  int64            `db:"message_rate"`
	PortfolioURL sql.NullString   `db:"portfolio_url"`
	FanLevel     int              `db:"fan_level"`
	CompanyName  sql.NullString   `db:"company_name"`
	CreatedAt    sql.NullTime     `db:"created_at"`
}

const actorColumns = `id, kind, display_name, coin_balance, message_rate, portfolio_url, fan_level, company_name, created_at`

func (row actorRow) toActor() models.Actor {
	actor := models.Actor{
		ID:          row.ID,
		Kind:        row.Kind,
		DisplayName: row.DisplayName,
		CoinBalance: row.CoinBalance,
		CreatedAt:   row.CreatedAt.Time,
	}
	switch row.Kind {
	case models.ActorModel:
		actor.Model = &models.ModelProfile{MessageRate: row.MessageRate, PortfolioURL: row.PortfolioURL.String}
	case models.ActorFan:
		actor.Fan = &models.FanProfile{Level: row.FanLevel}
	case models.ActorBrand:
		actor.Brand = &models.BrandProfile{CompanyName: row.CompanyName.String}
	}
	return actor
}

// GetActor fetches a single actor by id.
func (r *ActorRepo) GetActor(ctx context.Context, actorID int64) (models.Actor, error) {
	var row actorRow
	err := r.db.GetContext(ctx, &row, `SELECT `+actorColumns+` FROM actors WHERE id=$1`, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Actor{}, ErrActorNotFound
	}
	if err != nil {
		return models.Actor{}, err
	}
	return row.toActor(), nil
}

// BulkActors fetches multiple actors at once.
func (r *ActorRepo) BulkActors(ctx context.Context, actorIDs []int64) ([]models.Actor, error) {
	if len(actorIDs) == 0 {
		return nil, nil
	}
	var rows []actorRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+actorColumns+` FROM actors WHERE id = ANY($1)`, pq.Int64Array(actorIDs))
	if err != nil {
		return nil, err
	}
	actors := make([]models.Actor, 0, len(rows))
	for _, row := range rows {
		actors = append(actors, row.toActor())
	}
	return actors, nil
}
