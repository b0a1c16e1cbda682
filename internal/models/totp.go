package models

// TOTPSetupResponse carries the provisioning secret and QR code for an
// authenticator app during 2FA enrollment
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data:image/png;base64,...
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

// TOTPVerifyRequest is the body for 2FA verification endpoints
type TOTPVerifyRequest struct {
	Code      string `json:"code"`
	TempToken string `json:"temp_token,omitempty"` // login step 2 only
}

// TOTPDisableRequest requires both the password and a current code
type TOTPDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// TOTPStatus reports a member's 2FA state
type TOTPStatus struct {
	Enabled bool `json:"enabled"`
}
