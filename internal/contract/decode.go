package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

var errTrailingData = errors.New("trailing data after JSON value")

// Decode parses body and checks the result against shape. The literal body
// null decodes to nil; whether that is acceptable is up to the shape.
// Numbers are returned as json.Number.
func Decode(body []byte, shape Shape) (any, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, &common.ContractError{
			Expected: shape.String(),
			Actual:   "invalid JSON",
			Summary:  Summarize(body),
		}
	}
	if !shape.Accepts(v) {
		return nil, &common.ContractError{
			Expected: shape.String(),
			Actual:   KindOf(v),
			Summary:  Summarize(body),
		}
	}
	return v, nil
}

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}
