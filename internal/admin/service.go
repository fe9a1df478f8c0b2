package admin

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

const (
	adminRequiredMessage = "Admin access required."
	uploadFieldsMessage  = "Fill in all fields and select a file."
	uploadFailedMessage  = "Product upload failed."
	sessionEndedMessage  = "Your session no longer has admin access. Please log in again."
)

type session interface {
	WaitRestored(ctx context.Context) error
	IsAdmin() bool
	Logout(ctx context.Context)
}

type remote interface {
	AdminProducts(ctx context.Context) ([]types.Product, error)
	AdminDeleteProduct(ctx context.Context, productID types.ID) error
	UploadProduct(ctx context.Context, upload types.ProductUpload) error
	AdminPendingOrders(ctx context.Context) ([]types.Order, error)
	AllOrders(ctx context.Context) ([]types.Order, error)
	AdminUsers(ctx context.Context) ([]types.AdminUser, error)
	AdminDeleteUser(ctx context.Context, userID types.ID) error
}

// Service backs the admin dashboard. Every call waits for session restore
// and then requires the ADMIN role.
type Service struct {
	session session
	remote  remote
	logg    *logger.Logger
}

// NewService builds the admin service.
func NewService(sess session, client remote, logg *logger.Logger) (*Service, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	if client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{session: sess, remote: client, logg: logg}, nil
}

func (s *Service) guard(ctx context.Context) error {
	if err := s.session.WaitRestored(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransient, err, "session restore did not finish")
	}
	if !s.session.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, adminRequiredMessage)
	}
	return nil
}

// revokeOnForbidden ends the local session when the backend refuses an
// admin call, so a stale ADMIN role cannot keep retrying.
func (s *Service) revokeOnForbidden(ctx context.Context, err error) error {
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		return err
	}
	s.logg.Warn(ctx, "admin call forbidden by backend; logging out")
	s.session.Logout(ctx)
	return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, sessionEndedMessage)
}

// ListProducts lists the full catalogue.
func (s *Service) ListProducts(ctx context.Context) ([]types.Product, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	products, err := s.remote.AdminProducts(ctx)
	if err != nil {
		return nil, s.revokeOnForbidden(ctx, err)
	}
	return products, nil
}

// DeleteProduct removes a product from the catalogue.
func (s *Service) DeleteProduct(ctx context.Context, productID types.ID) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if productID.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.remote.AdminDeleteProduct(ctx, productID); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeForbidden) {
			return s.revokeOnForbidden(ctx, err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, "Failed to delete product.")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID.String()), "product deleted")
	return nil
}

// CreateProduct uploads a new catalogue entry with its image. Every text
// field and the image are required.
func (s *Service) CreateProduct(ctx context.Context, upload types.ProductUpload) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if err := validateUpload(upload); err != nil {
		return err
	}
	if err := s.remote.UploadProduct(ctx, upload); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeForbidden) {
			return s.revokeOnForbidden(ctx, err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, uploadFailedMessage)
	}
	s.logg.Info(s.logg.WithField(ctx, "product_name", upload.Name), "product uploaded")
	return nil
}

func validateUpload(upload types.ProductUpload) error {
	for _, field := range []string{
		upload.Name, upload.Brand, upload.Category, upload.Size,
		upload.Material, upload.Description, upload.FileName,
	} {
		if strings.TrimSpace(field) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, uploadFieldsMessage)
		}
	}
	if upload.Image == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, uploadFieldsMessage)
	}
	if upload.Price.IsNegative() || upload.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Price and stock quantity cannot be negative.")
	}
	return nil
}

// ListPendingOrders lists orders awaiting fulfilment.
func (s *Service) ListPendingOrders(ctx context.Context) ([]types.Order, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.remote.AdminPendingOrders(ctx)
}

// ListOrders lists every order.
func (s *Service) ListOrders(ctx context.Context) ([]types.Order, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.remote.AllOrders(ctx)
}

// ListUsers lists every account.
func (s *Service) ListUsers(ctx context.Context) ([]types.AdminUser, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.remote.AdminUsers(ctx)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, userID types.ID) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if userID.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.remote.AdminDeleteUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeOf(err), err, "Failed to delete user.")
	}
	s.logg.Info(s.logg.WithField(ctx, "deleted_user_id", userID.String()), "user deleted")
	return nil
}
