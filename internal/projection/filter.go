package projection

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MsgInvalidFilterNumber возвращается для нецелого значения category.
const MsgInvalidFilterNumber = "Enter a whole number."

// ParseProductFilter строит фильтр товаров из query-параметров category и name.
// Пустой параметр не ограничивает выборку.
func ParseProductFilter(query url.Values) (domain.ProductFilter, error) {
	var filter domain.ProductFilter
	errs := domain.NewValidationError()

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("category", MsgInvalidFilterNumber)
		} else {
			filter.CategoryID = &id
		}
	}
	if name := query.Get("name"); name != "" {
		filter.Name = &name
	}

	return filter, errs.OrNil()
}
