package validator

import (
	"math"
	"testing"
)

type saleInput struct {
	Amount float64 `json:"amount" validate:"required,finite,gte=0.01"`
	Client string  `json:"client" validate:"required,notblank"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	cases := []struct {
		name  string
		input saleInput
		field string
	}{
		{"nan amount", saleInput{Amount: math.NaN(), Client: "acme"}, "amount"},
		{"blank client", saleInput{Amount: 10, Client: "   "}, "client"},
		{"below minimum", saleInput{Amount: 0.001, Client: "acme"}, "amount"},
	}

	for _, tc := range cases {
		err := v.Struct(tc.input)
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if _, ok := FieldErrors(err)[tc.field]; !ok {
			t.Errorf("%s: expected failure on %q, got %v", tc.name, tc.field, FieldErrors(err))
		}
	}

	if err := v.Struct(saleInput{Amount: 120.5, Client: "acme"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}
