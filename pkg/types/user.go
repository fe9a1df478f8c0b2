package types

import (
	"strings"

	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
)

// Contact is the contact block of a user profile.
type Contact struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UserProfile is the authenticated identity returned at login and persisted
// under the user key. Role decoding rejects anything but ADMIN and BUYER.
type UserProfile struct {
	UserID          ID         `json:"userId,omitempty"`
	ID              ID         `json:"id,omitempty"`
	Username        string     `json:"username,omitempty"`
	Name            string     `json:"name,omitempty"`
	Role            enums.Role `json:"role"`
	Contact         *Contact   `json:"contact,omitempty"`
	Email           string     `json:"email,omitempty"`
	PhoneNumber     string     `json:"phoneNumber,omitempty"`
	Address         *Address   `json:"address,omitempty"`
	DeliveryAddress *Address   `json:"deliveryAddress,omitempty"`
}

// Identity returns the buyer id used in order payloads.
func (u UserProfile) Identity() ID {
	return FirstID(u.UserID, u.ID)
}

// ContactName is the name printed on the order: name, else an email.
func (u UserProfile) ContactName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if u.Contact != nil && u.Contact.Email != "" {
		return u.Contact.Email
	}
	return u.Email
}

// ContactPhone prefers the contact block over the top-level number.
func (u UserProfile) ContactPhone() string {
	if u.Contact != nil && u.Contact.PhoneNumber != "" {
		return u.Contact.PhoneNumber
	}
	return u.PhoneNumber
}

// ShippingAddress resolves the delivery line, or "" when the account has none.
func (u UserProfile) ShippingAddress() string {
	for _, addr := range []*Address{u.Address, u.DeliveryAddress} {
		if addr == nil || addr.IsZero() {
			continue
		}
		return addr.Format()
	}
	return ""
}

// RegisterRequest is the new-account payload.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Contact  Contact `json:"contact"`
	Address  Address `json:"address"`
}

// AdminUser is a row of the admin user listing. Role stays a plain string so
// one odd account does not break the whole listing.
type AdminUser struct {
	UserID  ID       `json:"userId,omitempty"`
	ID      ID       `json:"id,omitempty"`
	Name    string   `json:"name,omitempty"`
	Role    string   `json:"role,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
	Email   string   `json:"email,omitempty"`
}
