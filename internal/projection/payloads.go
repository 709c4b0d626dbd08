package projection

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MsgNegativePrice возвращается для цены меньше нуля.
const MsgNegativePrice = "Ensure this value is greater than or equal to 0."

// Границы цены соответствуют колонке NUMERIC(12, 2).
const (
	priceMaxDigits     = 12
	priceDecimalPlaces = 2
)

// Сообщения о выходе цены за пределы точности.
const (
	MsgPriceMaxDigits     = "Ensure that there are no more than 12 digits in total."
	MsgPriceDecimalPlaces = "Ensure that there are no more than 2 decimal places."
	MsgPriceWholeDigits   = "Ensure that there are no more than 10 digits before the decimal point."
)

type productPayload struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// DecodeProduct разбирает полное представление товара. Все ошибки полей
// возвращаются одним *domain.ValidationError.
func DecodeProduct(body []byte) (domain.ProductDraft, error) {
	errs := domain.NewValidationError()
	fields, ok := parseObject(body, errs)
	if !ok {
		return domain.ProductDraft{}, errs
	}

	r := &fieldReader{fields: fields, errs: errs}
	payload := productPayload{
		Name:        r.String("name"),
		Description: r.String("description"),
	}
	draft := domain.ProductDraft{
		Price:      r.Decimal("price"),
		CategoryID: r.Reference("category"),
		VendorID:   r.Reference("vendor"),
	}
	if !errs.Has("price") {
		if draft.Price.LessThan(decimal.Zero) {
			errs.Add("price", MsgNegativePrice)
		} else if msg := checkPricePrecision(draft.Price); msg != "" {
			errs.Add("price", msg)
		}
	}
	checkConstraints(payload, errs)

	draft.Name = payload.Name
	draft.Description = payload.Description
	return draft, errs.OrNil()
}

// checkPricePrecision проверяет число значащих цифр цены. Нули в конце
// дробной части не считаются.
func checkPricePrecision(price decimal.Decimal) string {
	whole, frac, _ := strings.Cut(price.Abs().String(), ".")
	whole = strings.TrimLeft(whole, "0")

	switch {
	case len(whole)+len(frac) > priceMaxDigits:
		return MsgPriceMaxDigits
	case len(frac) > priceDecimalPlaces:
		return MsgPriceDecimalPlaces
	case len(whole) > priceMaxDigits-priceDecimalPlaces:
		return MsgPriceWholeDigits
	}
	return ""
}

type categoryPayload struct {
	Name string `json:"name" validate:"required,max=255"`
}

// DecodeCategory разбирает представление категории.
func DecodeCategory(body []byte) (domain.CategoryDraft, error) {
	errs := domain.NewValidationError()
	fields, ok := parseObject(body, errs)
	if !ok {
		return domain.CategoryDraft{}, errs
	}

	r := &fieldReader{fields: fields, errs: errs}
	payload := categoryPayload{Name: r.String("name")}
	checkConstraints(payload, errs)

	return domain.CategoryDraft{Name: payload.Name}, errs.OrNil()
}

type cartItemPayload struct {
	Quantity int64 `json:"quantity" validate:"min=1,max=2147483647"`
}

type cartPayload struct {
	Items []cartItemPayload `json:"items" validate:"dive"`
}

// DecodeCart разбирает корзину вместе с позициями.
func DecodeCart(body []byte) (domain.CartDraft, error) {
	errs := domain.NewValidationError()
	fields, ok := parseObject(body, errs)
	if !ok {
		return domain.CartDraft{}, errs
	}

	r := &fieldReader{fields: fields, errs: errs}
	draft := domain.CartDraft{CustomerID: r.Reference("customer")}

	itemReaders, _ := r.List("items")
	payload := cartPayload{Items: make([]cartItemPayload, len(itemReaders))}
	draft.Items = make([]domain.CartItem, len(itemReaders))
	for i, ir := range itemReaders {
		draft.Items[i].ProductID = ir.Reference("product")
		payload.Items[i].Quantity = ir.Int("quantity")
	}
	checkConstraints(payload, errs)

	for i := range draft.Items {
		draft.Items[i].Quantity = int32(payload.Items[i].Quantity)
	}
	return draft, errs.OrNil()
}

type userPayload struct {
	Username string `json:"username" validate:"required,max=150,username"`
}

// DecodeUser разбирает регистрационные данные. is_vendor по умолчанию true.
func DecodeUser(body []byte) (domain.UserDraft, error) {
	errs := domain.NewValidationError()
	fields, ok := parseObject(body, errs)
	if !ok {
		return domain.UserDraft{}, errs
	}

	r := &fieldReader{fields: fields, errs: errs}
	payload := userPayload{Username: r.String("username")}
	draft := domain.UserDraft{
		IsVendor: r.Bool("is_vendor", true),
		IsStaff:  r.Bool("is_staff", false),
	}
	checkConstraints(payload, errs)

	draft.Username = payload.Username
	return draft, errs.OrNil()
}
