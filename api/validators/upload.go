package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

const maxUploadBytes = 10 << 20

// DecodeProductUpload reads the admin product form: the text fields plus a
// "file" part. The returned close func releases the uploaded file.
func DecodeProductUpload(r *http.Request) (types.ProductUpload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return types.ProductUpload{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product form")
	}
	form := r.MultipartForm
	release := func() { _ = form.RemoveAll() }

	upload := types.ProductUpload{
		Name:        SanitizeString(r.FormValue("name"), 128),
		Brand:       SanitizeString(r.FormValue("brand"), 64),
		Category:    SanitizeString(r.FormValue("category"), 64),
		Size:        SanitizeString(r.FormValue("size"), 32),
		Material:    SanitizeString(r.FormValue("material"), 64),
		Description: SanitizeString(r.FormValue("description"), 2000),
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			release()
			return types.ProductUpload{}, noop, pkgerrors.New(pkgerrors.CodeValidation, "price must be a number")
		}
		upload.Price = types.NewMoney(price)
	}
	if raw := strings.TrimSpace(r.FormValue("stockQuantity")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			release()
			return types.ProductUpload{}, noop, pkgerrors.New(pkgerrors.CodeValidation, "stockQuantity must be a whole number")
		}
		upload.StockQuantity = stock
	}

	if files := form.File["file"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			release()
			return types.ProductUpload{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable product image")
		}
		upload.FileName = files[0].Filename
		upload.Image = f
		release = func() {
			_ = f.Close()
			_ = form.RemoveAll()
		}
	}
	return upload, release, nil
}
