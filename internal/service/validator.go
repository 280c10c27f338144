package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/store"
)

const (
	MsgNameRequired     = "Product name is required and must be a non-empty string."
	MsgPriceRequired    = "Price is required and must be a non-negative number."
	MsgCategoryRequired = "Category is required and must be a non-empty string."
	MsgIDNotInteger     = "Product ID must be an integer."
	MsgUpdateRequired   = "Product ID and data are required for update"
	MsgCategoryFilter   = "Category is required to filter products"
	MsgNameTooLong      = "Product name must be at most 100 characters."
	MsgCategoryTooLong  = "Category must be at most 100 characters."
)

// MaxTextLength bounds name and category so every store accepts what validation accepts.
const MaxTextLength = 100

// Payload is a loosely typed product record as decoded from a JSON object.
// Numbers may be float64, json.Number or any Go integer type.
type Payload map[string]any

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProduct checks a full product record: name, then price, then category.
// It returns the first failure as a *ValidationError.
func ValidateProduct(p Payload) error {
	_, _, _, err := productFields(p)
	return err
}

// productFields validates p and returns its typed fields.
func productFields(p Payload) (string, float64, string, error) {
	name, err := textField(p, "name", MsgNameRequired, MsgNameTooLong)
	if err != nil {
		return "", 0, "", err
	}
	price, err := priceField(p)
	if err != nil {
		return "", 0, "", err
	}
	category, err := textField(p, "category", MsgCategoryRequired, MsgCategoryTooLong)
	if err != nil {
		return "", 0, "", err
	}
	return name, price, category, nil
}

// ValidatePatch checks only the fields present in p, with the same rules and order
// as ValidateProduct, and converts them into a store.Patch. Unknown keys are ignored.
// A patch with none of the product fields is rejected.
func ValidatePatch(p Payload) (store.Patch, error) {
	var patch store.Patch
	if _, ok := p["name"]; ok {
		name, err := textField(p, "name", MsgNameRequired, MsgNameTooLong)
		if err != nil {
			return store.Patch{}, err
		}
		patch.Name = &name
	}
	if _, ok := p["price"]; ok {
		price, err := priceField(p)
		if err != nil {
			return store.Patch{}, err
		}
		patch.Price = &price
	}
	if _, ok := p["category"]; ok {
		category, err := textField(p, "category", MsgCategoryRequired, MsgCategoryTooLong)
		if err != nil {
			return store.Patch{}, err
		}
		patch.Category = &category
	}
	if patch.IsEmpty() {
		return store.Patch{}, &perrors.ValidationError{Field: "data", Message: MsgUpdateRequired}
	}
	return patch, nil
}

// ParseID converts a decoded identifier into an int64.
// Strings, booleans and numbers with a fractional part are rejected.
func ParseID(v any) (int64, error) {
	invalid := &perrors.ValidationError{Field: "id", Message: MsgIDNotInteger}
	switch id := v.(type) {
	case int:
		return int64(id), nil
	case int32:
		return int64(id), nil
	case int64:
		return id, nil
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, invalid
		}
		return n, nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
		if id != math.Trunc(id) || id >= math.MaxInt64 || id < math.MinInt64 {
			return 0, invalid
		}
		return int64(id), nil
	default:
		return 0, invalid
	}
}

func textField(p Payload, field, msg, tooLong string) (string, error) {
	s, ok := p[field].(string)
	if !ok || validate.Var(strings.TrimSpace(s), "required") != nil {
		return "", &perrors.ValidationError{Field: field, Message: msg}
	}
	if validate.Var(s, "max="+strconv.Itoa(MaxTextLength)) != nil {
		return "", &perrors.ValidationError{Field: field, Message: tooLong}
	}
	return s, nil
}

func priceField(p Payload) (float64, error) {
	invalid := &perrors.ValidationError{Field: "price", Message: MsgPriceRequired}
	price, ok := toNumber(p["price"])
	if !ok || math.IsNaN(price) || validate.Var(price, "gte=0") != nil {
		return 0, invalid
	}
	return price, nil
}

// toNumber accepts JSON numbers and Go numeric types. Booleans are not numbers.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
