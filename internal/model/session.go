package model

// Session identifies an authenticated shopper. A nil *Session is a guest:
// guests keep an in-memory cart but cannot persist anything.
type Session struct {
	UserID      string
	Email       string
	Name        string
	AccessToken string
	// RewardCoupons is the spin_coupons list from the user's profile
	// metadata at sign-in; refreshed by FetchUserCoupons.
	RewardCoupons []RewardCoupon
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
