package domain

import (
	"math"
	"testing"
)

func TestConvert_Identity(t *testing.T) {
	if got := Convert(123.45, CurrencyUSD, CurrencyUSD); got != 123.45 {
		t.Fatalf("expected identity, got %v", got)
	}
}

func TestConvert_USDToAED(t *testing.T) {
	if got := Convert(1000, CurrencyUSD, CurrencyAED); !closeTo(got, 3673.5) {
		t.Fatalf("expected 3673.5, got %v", got)
	}
	if got := Convert(3673.5, CurrencyAED, CurrencyUSD); !closeTo(got, 1000) {
		t.Fatalf("expected 1000, got %v", got)
	}
}

func TestConvert_EURPivotsThroughAED(t *testing.T) {
	// 100 EUR = 431.19 AED = 431.19/3.6735 USD.
	if got := Convert(100, CurrencyEUR, CurrencyAED); !closeTo(got, 431.19) {
		t.Fatalf("expected 431.19, got %v", got)
	}
	want := 431.19 / 3.6735
	if got := Convert(100, CurrencyEUR, CurrencyUSD); !closeTo(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConvert_RoundTrips(t *testing.T) {
	for _, amount := range []float64{0.01, 1, 250.75, 99999.99} {
		viaAED := Convert(Convert(amount, CurrencyUSD, CurrencyAED), CurrencyAED, CurrencyUSD)
		if !closeTo(viaAED, amount) {
			t.Fatalf("USD->AED->USD drifted: %v != %v", viaAED, amount)
		}
		viaEUR := Convert(Convert(amount, CurrencyUSD, CurrencyEUR), CurrencyEUR, CurrencyUSD)
		if !closeTo(viaEUR, amount) {
			t.Fatalf("USD->EUR->USD drifted: %v != %v", viaEUR, amount)
		}
	}
}

func TestConvert_ZeroOrEmptyInputs(t *testing.T) {
	if got := Convert(0, CurrencyUSD, CurrencyAED); got != 0 {
		t.Fatalf("expected 0 for zero amount, got %v", got)
	}
	if got := Convert(100, "", CurrencyAED); got != 0 {
		t.Fatalf("expected 0 for empty from, got %v", got)
	}
	if got := Convert(100, CurrencyUSD, ""); got != 0 {
		t.Fatalf("expected 0 for empty to, got %v", got)
	}
}

func TestConvert_UnknownCurrencyFallsThrough(t *testing.T) {
	if got := Convert(100, "GBP", CurrencyUSD); got != 100 {
		t.Fatalf("expected unconverted amount, got %v", got)
	}
	if got := Convert(100, "GBP", CurrencyEUR); got != 100 {
		t.Fatalf("expected unconverted amount, got %v", got)
	}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9*math.Max(1, math.Abs(b))
}
