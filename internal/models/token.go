package models

// TokenDetails holds a freshly issued access/refresh token pair.
// Expiry fields are unix timestamps; they are informational for clients,
// the authoritative expiry lives inside the signed tokens themselves.
type TokenDetails struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	AtExpires    int64  `json:"at_expires"`
	RtExpires    int64  `json:"rt_expires"`
}
