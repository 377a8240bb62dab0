// Copyright (c) 2025 BVK Chaitanya

package tx

import (
	"errors"
	"testing"
)

func TestValidateRejections(t *testing.T) {
	order := testLimitOrder().Order

	tests := []struct {
		name  string
		txn   Transaction
		field string
	}{
		{
			name: "market index too high",
			txn: &CreateOrder{Order: OrderInfo{
				MarketIndex: 255, ClientOrderIndex: 1, BaseAmount: 1, Price: 1,
				OrderType: OrderTypeLimit, TimeInForce: TimeInForceGoodTillTime,
			}},
			field: "market_index",
		},
		{
			name: "zero base amount",
			txn: &CreateOrder{Order: OrderInfo{
				ClientOrderIndex: 1, BaseAmount: 0, Price: 1,
				OrderType: OrderTypeLimit, TimeInForce: TimeInForceGoodTillTime,
			}},
			field: "base_amount",
		},
		{
			name: "trigger price on plain limit order",
			txn: &CreateOrder{Order: OrderInfo{
				ClientOrderIndex: 1, BaseAmount: 1, Price: 1, TriggerPrice: 5,
				OrderType: OrderTypeLimit, TimeInForce: TimeInForceGoodTillTime,
			}},
			field: "trigger_price",
		},
		{
			name: "stop loss without trigger price",
			txn: &CreateOrder{Order: OrderInfo{
				ClientOrderIndex: 1, BaseAmount: 1, Price: 1,
				OrderType: OrderTypeStopLoss, TimeInForce: TimeInForceImmediateOrCancel,
			}},
			field: "trigger_price",
		},
		{
			name:  "one-cancels-other with three orders",
			txn:   &CreateGroupedOrders{GroupingType: GroupingOneCancelsOther, Orders: []OrderInfo{order, order, order}},
			field: "orders",
		},
		{
			name:  "one-triggers-one-cancels with two orders",
			txn:   &CreateGroupedOrders{GroupingType: GroupingOneTriggersOneCancels, Orders: []OrderInfo{order, order}},
			field: "orders",
		},
		{
			name:  "short memo",
			txn:   &Transfer{ToAccountIndex: 1, USDCAmount: 1, Memo: []byte("hello")},
			field: "memo",
		},
		{
			name:  "negative withdraw",
			txn:   &Withdraw{USDCAmount: -1},
			field: "usdc_amount",
		},
		{
			name:  "short pub key",
			txn:   &ChangePubKey{PubKey: []byte{1, 2, 3}},
			field: "pub_key",
		},
		{
			name:  "cancel order with client-range index",
			txn:   &CancelOrder{MarketIndex: 0, OrderIndex: 10},
			field: "order_index",
		},
		{
			name:  "zero leverage fraction",
			txn:   &UpdateLeverage{MarketIndex: 0, InitialMarginFraction: 0, MarginMode: MarginModeCross},
			field: "initial_margin_fraction",
		},
	}

	for _, test := range tests {
		err := test.txn.Validate()
		if err == nil {
			t.Fatalf("%s: validation unexpectedly passed", test.name)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: error %T is not a ValidationError", test.name, err)
		}
		if verr.Field != test.field {
			t.Fatalf("%s: rejected field %q, want %q", test.name, verr.Field, test.field)
		}
	}
}

func TestValidateEnvelope(t *testing.T) {
	env := testEnvelope
	if err := env.Validate(); err != nil {
		t.Fatal(err)
	}

	bad := env
	bad.AccountIndex = MaxAccountIndex + 1
	if err := bad.Validate(); err == nil {
		t.Fatalf("oversized account index accepted")
	}

	bad = env
	bad.Nonce = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("negative nonce accepted")
	}

	bad = env
	bad.APIKeyIndex = 255
	if err := bad.Validate(); err == nil {
		t.Fatalf("nil api key index accepted")
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	env := testEnvelope
	if _, err := Encode(&env, &Withdraw{USDCAmount: 0}); err == nil {
		t.Fatalf("encode accepted an invalid transaction")
	}
}
