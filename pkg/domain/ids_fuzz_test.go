package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID checks parsing never panics and always returns either a
// valid ID or an error.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)
		if err == nil {
			roundTrip, err2 := ParseUserID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
			if id.IsNil() {
				t.Error("nil ID accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types validate identically.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errTx := ParseTransactionID(input)
		_, errProp := ParsePropertyID(input)
		_, errStep := ParseStepID(input)
		_, errWallet := ParseWalletID(input)

		want := errUser == nil
		for _, err := range []error{errTx, errProp, errStep, errWallet} {
			if (err == nil) != want {
				t.Errorf("inconsistent validation for %q", input)
			}
		}
	})
}

func FuzzParseCurrency(f *testing.F) {
	f.Add("EUR")
	f.Add("btc")
	f.Add("")
	f.Add("\xff\xfe")

	f.Fuzz(func(t *testing.T, input string) {
		c, err := ParseCurrency(input)
		if err != nil {
			return
		}
		if len(c) < 3 || len(c) > 5 {
			t.Errorf("accepted %q with bad length", c)
		}
		again, err := ParseCurrency(c.String())
		if err != nil || again != c {
			t.Errorf("currency %q not stable under re-parse", c)
		}
	})
}
