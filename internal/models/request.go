package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Default query options sent upstream when the caller omits them
const (
	DefaultChain  = "sepolia"
	DefaultFormat = "decimal"
	DefaultOffset = uint64(0)
	DefaultLimit  = uint64(100)
)

// ErrInvalidRequest is the root of every caller input error
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidBody marks a body that failed to deserialize
var ErrInvalidBody = fmt.Errorf("%w: invalid request body", ErrInvalidRequest)

// AddressRequest is the inbound payload of every gateway operation
type AddressRequest struct {
	Address string       `json:"address"`
	Options QueryOptions `json:"options"`
}

// QueryOptions tunes the upstream query. Nil fields are filled by Normalize.
type QueryOptions struct {
	Chain  *string `json:"chain,omitempty"`
	Format *string `json:"format,omitempty"`
	Offset *uint64 `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

// Params is a fully-populated QueryOptions
type Params struct {
	Chain  string
	Format string
	Offset uint64
	Limit  uint64
}

// Normalize returns the options with every missing field defaulted
func (o QueryOptions) Normalize() Params {
	p := Params{
		Chain:  DefaultChain,
		Format: DefaultFormat,
		Offset: DefaultOffset,
		Limit:  DefaultLimit,
	}
	if o.Chain != nil && *o.Chain != "" {
		p.Chain = *o.Chain
	}
	if o.Format != nil && *o.Format != "" {
		p.Format = *o.Format
	}
	if o.Offset != nil {
		p.Offset = *o.Offset
	}
	if o.Limit != nil {
		p.Limit = *o.Limit
	}
	return p
}

// Values encodes the params as an upstream query string
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("chain", p.Chain)
	v.Set("format", p.Format)
	v.Set("offset", strconv.FormatUint(p.Offset, 10))
	v.Set("limit", strconv.FormatUint(p.Limit, 10))
	return v
}

// SanitizeAddress unescapes a caller-supplied address and rejects anything
// that could escape its URL path segment.
func SanitizeAddress(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}

	if strings.ContainsRune(s, '\\') {
		unquoted, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
		if err != nil {
			return "", fmt.Errorf("%w: malformed escape in address", ErrInvalidRequest)
		}
		s = unquoted
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	if strings.Trim(s, ".") == "" {
		return "", fmt.Errorf("%w: address cannot be a dot segment", ErrInvalidRequest)
	}

	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) || strings.ContainsRune(`/?#%\"'`, r) {
			return "", fmt.Errorf("%w: address contains illegal character %q", ErrInvalidRequest, r)
		}
	}

	return s, nil
}
