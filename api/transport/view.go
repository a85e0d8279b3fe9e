package transport

import (
	"github.com/fastygo/storefront/domain"
	authUC "github.com/fastygo/storefront/usecase/auth"
)

type SessionView struct {
	Authenticated bool                        `json:"authenticated"`
	Identity      *domain.Identity            `json:"identity,omitempty"`
	Pending       *domain.PendingRegistration `json:"pending,omitempty"`
	Banner        *authUC.Banner              `json:"banner,omitempty"`
}

type CartView struct {
	Items domain.Cart `json:"items"`
	Total string      `json:"total"`
	Count int         `json:"count"`
}

func NewCartView(cart domain.Cart) CartView {
	if cart == nil {
		cart = domain.Cart{}
	}
	return CartView{
		Items: cart,
		Total: cart.Total().StringFixed(2),
		Count: cart.Count(),
	}
}

type RegisterView struct {
	Pending      *domain.PendingRegistration `json:"pending"`
	Verification authUC.VerificationState    `json:"verification"`
	Banner       authUC.Banner               `json:"banner"`
}

type VerificationView struct {
	Verification authUC.VerificationState `json:"verification"`
	Session      *SessionView             `json:"session,omitempty"`
}
