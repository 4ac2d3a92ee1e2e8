package proto

import "github.com/dmitrijs2005/anchor/internal/anchor"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterUserRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterUserResponse struct {
	UserID string `json:"userId"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifierCandidate"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SyncRequest pushes pending actions and asks for every anchor changed
// after MaxVersion.
type SyncRequest struct {
	Actions    []*anchor.Action `json:"actions"`
	MaxVersion int64            `json:"maxVersion"`
}

// SyncResponse lists the ids of the applied actions, the anchors with a
// version above the requested one, and the user's current version.
type SyncResponse struct {
	Applied    []string         `json:"applied"`
	Rejected   []string         `json:"rejected"`
	Anchors    []*anchor.Anchor `json:"anchors"`
	MaxVersion int64            `json:"maxVersion"`
}

type CreateOrderRequest struct {
	Order anchor.Order `json:"order"`
}

type CreateOrderResponse struct {
	Order *anchor.Order `json:"order"`
}
