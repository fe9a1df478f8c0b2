package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/api/validators"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// AdminService backs the admin dashboard routes.
type AdminService interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	CreateProduct(ctx context.Context, upload types.ProductUpload) error
	DeleteProduct(ctx context.Context, productID types.ID) error
	ListPendingOrders(ctx context.Context) ([]types.Order, error)
	ListOrders(ctx context.Context) ([]types.Order, error)
	ListUsers(ctx context.Context) ([]types.AdminUser, error)
	DeleteUser(ctx context.Context, userID types.ID) error
}

func adminList[T any](logg *logger.Logger, fetch func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fetch(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		responses.WriteSuccess(w, items)
	}
}

func adminDelete(logg *logger.Logger, param string, del func(context.Context, types.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdminProducts(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminList(logg, svc.ListProducts)
}

// AdminCreateProduct accepts the multipart product form and forwards it.
func AdminCreateProduct(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, release, err := validators.DecodeProductUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer release()
		if err := svc.CreateProduct(r.Context(), upload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": "Product added!"})
	}
}

func AdminDeleteProduct(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminDelete(logg, "productId", svc.DeleteProduct)
}

func AdminPendingOrders(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminList(logg, svc.ListPendingOrders)
}

func AdminOrders(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminList(logg, svc.ListOrders)
}

func AdminUsers(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminList(logg, svc.ListUsers)
}

func AdminDeleteUser(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminDelete(logg, "userId", svc.DeleteUser)
}
