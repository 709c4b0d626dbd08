package projection

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Сообщения об ошибках полей.
const (
	MsgRequired      = "This field is required."
	MsgNull          = "This field may not be null."
	MsgBlank         = "This field may not be blank."
	MsgInvalidString = "Not a valid string."
	MsgInvalidNumber = "A valid number is required."
	MsgInvalidInt    = "A valid integer is required."
	MsgInvalidBool   = "Must be a valid boolean."
	MsgInvalidPK     = "Incorrect type. Expected pk value."
	MsgInvalidList   = "Expected a list of items."
	MsgNotObject     = "Invalid data. Expected a dictionary."
	MsgParseError    = "JSON parse error."
	MsgNoData        = "No data provided."
)

// parseObject разбирает тело запроса как JSON-объект.
func parseObject(body []byte, errs *domain.ValidationError) (map[string]json.RawMessage, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		errs.Add(domain.NonFieldErrors, MsgNoData)
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			errs.Add(domain.NonFieldErrors, MsgNotObject)
		} else {
			errs.Add(domain.NonFieldErrors, MsgParseError)
		}
		return nil, false
	}
	if fields == nil {
		errs.Add(domain.NonFieldErrors, MsgNotObject)
		return nil, false
	}
	return fields, true
}

// fieldReader читает поля объекта и складывает ошибки приведения типов
// в общий ValidationError.
type fieldReader struct {
	fields map[string]json.RawMessage
	errs   *domain.ValidationError
	prefix string
}

func (r *fieldReader) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "." + name
}

// raw возвращает значение поля; отсутствие и null для обязательных полей
// записываются как ошибки.
func (r *fieldReader) raw(name string, required bool) (json.RawMessage, bool) {
	raw, ok := r.fields[name]
	if !ok {
		if required {
			r.errs.Add(r.key(name), MsgRequired)
		}
		return nil, false
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		if required {
			r.errs.Add(r.key(name), MsgNull)
		}
		return nil, false
	}
	return raw, true
}

// String читает строку и обрезает пробелы по краям.
func (r *fieldReader) String(name string) string {
	raw, ok := r.raw(name, true)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		r.errs.Add(r.key(name), MsgInvalidString)
		return ""
	}
	return strings.TrimSpace(s)
}

// Decimal принимает число или числовую строку.
func (r *fieldReader) Decimal(name string) decimal.Decimal {
	raw, ok := r.raw(name, true)
	if !ok {
		return decimal.Zero
	}
	text, ok := scalarText(raw)
	if !ok {
		r.errs.Add(r.key(name), MsgInvalidNumber)
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		r.errs.Add(r.key(name), MsgInvalidNumber)
		return decimal.Zero
	}
	return d
}

// Int принимает целое число или строку с целым числом.
func (r *fieldReader) Int(name string) int64 {
	return r.integer(name, MsgInvalidInt)
}

// Reference читает идентификатор связанной сущности.
func (r *fieldReader) Reference(name string) int64 {
	return r.integer(name, MsgInvalidPK)
}

func (r *fieldReader) integer(name, invalidMsg string) int64 {
	raw, ok := r.raw(name, true)
	if !ok {
		return 0
	}
	text, ok := scalarText(raw)
	if !ok {
		r.errs.Add(r.key(name), invalidMsg)
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		r.errs.Add(r.key(name), invalidMsg)
		return 0
	}
	return n
}

// Bool читает необязательный флаг; при отсутствии поля возвращает def.
func (r *fieldReader) Bool(name string, def bool) bool {
	raw, ok := r.raw(name, false)
	if !ok {
		return def
	}
	text, ok := scalarText(raw)
	if !ok {
		r.errs.Add(r.key(name), MsgInvalidBool)
		return def
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		r.errs.Add(r.key(name), MsgInvalidBool)
		return def
	}
}

// List читает массив объектов. Элемент, не являющийся объектом, даёт ошибку
// с индексом и пропускается.
func (r *fieldReader) List(name string) ([]*fieldReader, bool) {
	raw, ok := r.raw(name, true)
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		r.errs.Add(r.key(name), MsgInvalidList)
		return nil, false
	}

	readers := make([]*fieldReader, len(items))
	for i, item := range items {
		prefix := r.key(name) + "[" + strconv.Itoa(i) + "]"
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			r.errs.Add(prefix, MsgNotObject)
			fields = map[string]json.RawMessage{}
		}
		readers[i] = &fieldReader{fields: fields, errs: r.errs, prefix: prefix}
	}
	return readers, true
}

// scalarText возвращает текст числа, булева значения или строки.
func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	default:
		return string(raw), true
	}
}
