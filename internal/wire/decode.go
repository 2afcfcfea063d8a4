package wire

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/order"
	"github.com/madangbooks/madang/internal/domain/sale"
)

// DecodeSaleRequest decodes
// {customerName, customerId?, bookId, salePrice?, orderDate?, address?, phone?}.
func DecodeSaleRequest(data []byte) (sale.Request, error) {
	var req sale.Request
	err := decodeObject(data, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerName":
			req.CustomerName, err = str(d, key)
		case "customerId":
			req.CustomerID, err = id(d, key)
		case "bookId":
			req.BookID, err = id(d, key)
		case "salePrice":
			var p *decimal.Decimal
			p, err = optionalMoney(d, key)
			req.SalePrice = p
		case "orderDate":
			req.OrderDate, err = optionalDate(d, key)
		case "address":
			req.Address, err = str(d, key)
		case "phone":
			req.Phone, err = str(d, key)
		default:
			return d.Skip()
		}
		return err
	})
	return req, err
}

// DecodeResolveRequest decodes {name, address?, phone?, customerId?}.
func DecodeResolveRequest(data []byte) (customer.ResolveRequest, error) {
	var req customer.ResolveRequest
	err := decodeObject(data, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.Name, err = str(d, key)
		case "address":
			req.Address, err = str(d, key)
		case "phone":
			req.Phone, err = str(d, key)
		case "customerId":
			req.CustomerID, err = id(d, key)
		default:
			return d.Skip()
		}
		return err
	})
	return req, err
}

// DecodeRecordRequest decodes {customerId, bookId, salePrice, orderDate}.
func DecodeRecordRequest(data []byte) (order.RecordRequest, error) {
	var (
		req      order.RecordRequest
		hasPrice bool
	)
	err := decodeObject(data, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerId":
			req.CustomerID, err = id(d, key)
		case "bookId":
			req.BookID, err = id(d, key)
		case "salePrice":
			var p *decimal.Decimal
			if p, err = optionalMoney(d, key); p != nil {
				req.SalePrice, hasPrice = *p, true
			}
		case "orderDate":
			req.OrderDate, err = optionalDate(d, key)
		default:
			return d.Skip()
		}
		return err
	})
	if err != nil {
		return req, err
	}
	if !hasPrice {
		return req, apperr.Validation("salePrice", "is required")
	}
	return req, nil
}

func decodeObject(data []byte, fn func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return apperr.Validation("body", "expected a JSON object")
	}
	if err := d.Obj(fn); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return apperr.Validation("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func str(d *jx.Decoder, key string) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Null:
		return "", d.Null()
	default:
		return "", apperr.Validation(key, "must be a string")
	}
}

func id(d *jx.Decoder, key string) (int64, error) {
	switch d.Next() {
	case jx.Number:
		v, err := d.Int64()
		if err != nil {
			return 0, apperr.Validation(key, "must be an integer")
		}
		return v, nil
	case jx.Null:
		return 0, d.Null()
	default:
		return 0, apperr.Validation(key, "must be an integer")
	}
}

func optionalMoney(d *jx.Decoder, key string) (*decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, apperr.Validation(key, "must be a number")
		}
		raw = string(n)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		raw = s
	case jx.Null:
		return nil, d.Null()
	default:
		return nil, apperr.Validation(key, "must be a number")
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, apperr.Validation(key, "must be a number")
	}
	return &v, nil
}

func optionalDate(d *jx.Decoder, key string) (time.Time, error) {
	s, err := str(d, key)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validation(key, "must be a date in YYYY-MM-DD form")
	}
	return t, nil
}
