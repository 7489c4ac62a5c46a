package models

import "time"

// ActorKind discriminates the three participant variants on the platform.
type ActorKind string

const (
	ActorModel ActorKind = "model"
	ActorFan   ActorKind = "fan"
	ActorBrand ActorKind = "brand"
)

// Actor is a platform identity able to send and receive messages.
// Exactly one of the profile payloads is populated, selected by Kind.
type Actor struct {
	ID          int64     `db:"id" json:"id"`
	Kind        ActorKind `db:"kind" json:"kind"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CoinBalance int64     `db:"coin_balance" json:"coin_balance"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Model *ModelProfile `json:"model,omitempty"`
	Fan   *FanProfile   `json:"fan,omitempty"`
	Brand *BrandProfile `json:"brand,omitempty"`
}

// ModelProfile holds model-only fields, including the per-message rate
// fans and brands are charged to reach the model.
type ModelProfile struct {
	MessageRate  int64  `json:"message_rate"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
}

// FanProfile holds fan-only fields.
type FanProfile struct {
	Level int `json:"level"`
}

// BrandProfile holds brand-only fields.
type BrandProfile struct {
	CompanyName string `json:"company_name"`
}

// MessageRate returns the model's per-message rate, or 0 for non-models.
func (a Actor) MessageRate() int64 {
	if a.Kind == ActorModel && a.Model != nil {
		return a.Model.MessageRate
	}
	return 0
}
