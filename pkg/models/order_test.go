package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartItemUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  CartItemType
		wantLabel string
	}{
		{
			name:      "flat product",
			input:     `{"type":"product","quantity":2,"subtotal":"40.5","product":{"productId":"p1","name":"Steel sheet","unitPrice":"20.25"}}`,
			wantType:  CartItemProduct,
			wantLabel: "Steel sheet",
		},
		{
			name:      "flat service",
			input:     `{"type":"service","quantity":1,"subtotal":"12","service":{"kind":"bending","templateCode":"B-01","price":"12"}}`,
			wantType:  CartItemService,
			wantLabel: "bending B-01",
		},
		{
			name:      "wrapped product",
			input:     `{"cartId":{"type":"product","quantity":1,"subtotal":"9","product":{"productId":"p2","name":"Angle bar","unitPrice":"9"}}}`,
			wantType:  CartItemProduct,
			wantLabel: "Angle bar",
		},
		{
			name:      "string cart id is ignored",
			input:     `{"cartId":"c-77","type":"service","quantity":3,"subtotal":"30","service":{"kind":"rebar","templateCode":"R-2","price":"10"}}`,
			wantType:  CartItemService,
			wantLabel: "rebar R-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item CartItem
			if err := json.Unmarshal([]byte(tt.input), &item); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if item.Type != tt.wantType {
				t.Errorf("type = %q, want %q", item.Type, tt.wantType)
			}
			if got := item.Label(); got != tt.wantLabel {
				t.Errorf("label = %q, want %q", got, tt.wantLabel)
			}
			if (item.Product == nil) == (item.Service == nil) {
				t.Errorf("exactly one line must be set: %+v", item)
			}
		})
	}
}

func TestCartItemUnmarshalDropsForeignLine(t *testing.T) {
	input := `{"type":"product","quantity":1,"subtotal":"1","product":{"productId":"p","name":"n","unitPrice":"1"},"service":{"kind":"rebar","templateCode":"x","price":"1"}}`
	var item CartItem
	if err := json.Unmarshal([]byte(input), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Service != nil {
		t.Error("service line kept on a product item")
	}
}

func TestCartItemUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown type", `{"type":"gift","quantity":1}`, ErrUnknownCartItemType},
		{"missing type", `{"quantity":1}`, ErrUnknownCartItemType},
		{"product without line", `{"type":"product","quantity":1}`, ErrCartItemLineMissing},
		{"service without line", `{"cartId":{"type":"service"}}`, ErrCartItemLineMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item CartItem
			err := json.Unmarshal([]byte(tt.input), &item)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOrderDecodesItems(t *testing.T) {
	input := `{"id":"o1","buyerId":"b1","total":"21","paymentStatus":"paid","purchasedAt":"2024-05-01T10:00:00Z","items":[
		{"type":"product","quantity":1,"subtotal":"9","product":{"productId":"p","name":"Tube","unitPrice":"9"}},
		{"cartId":{"type":"service","quantity":1,"subtotal":"12","service":{"kind":"cutting","templateCode":"C-1","price":"12"}}}
	]}`

	var order Order
	if err := json.Unmarshal([]byte(input), &order); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if order.PaymentStatus != PaymentStatusPaid {
		t.Errorf("payment status = %q", order.PaymentStatus)
	}
	if !order.Total.Equal(decimal.NewFromInt(21)) {
		t.Errorf("total = %s", order.Total)
	}
	if order.Items[1].Service.Kind != ServiceCutting {
		t.Errorf("second item kind = %q", order.Items[1].Service.Kind)
	}
}

func TestCartItemLabelWithoutLine(t *testing.T) {
	for _, item := range []CartItem{{Type: CartItemProduct}, {Type: CartItemService}, {}} {
		if got := item.Label(); got != "" {
			t.Errorf("Label(%+v) = %q, want empty", item, got)
		}
	}
}
