package transport

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	Terms           bool   `json:"terms"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type VerifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

// OTPDigitRequest sets one slot; a nil Slot targets the focused one.
type OTPDigitRequest struct {
	Slot  *int   `json:"slot"`
	Value string `json:"value"`
}

type OTPPasteRequest struct {
	Text string `json:"text"`
}

// CartAddRequest adds the cached catalog product with ProductID.
type CartAddRequest struct {
	ProductID int64 `json:"productId"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}
