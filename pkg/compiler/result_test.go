package compiler

import (
	"math"
	"testing"
)

func TestErrorEncodingRoundTrip(t *testing.T) {
	for _, index := range []int{0, 1, 7, 1024} {
		raw := EncodeError(index)
		value, errorIndex, isError := DecodeResult(raw)
		if !isError {
			t.Fatalf("EncodeError(%d) decoded as value %d", index, value)
		}
		if errorIndex != index {
			t.Fatalf("decoded index = %d, want %d", errorIndex, index)
		}
	}
}

func TestResultDecodingRoundTrip(t *testing.T) {
	// Values with the top bit naturally clear decode as themselves.
	for _, v := range []int64{0, 1, 42, 255, math.MaxInt64} {
		value, _, isError := DecodeResult(uint64(v))
		if isError {
			t.Fatalf("DecodeResult(%d) reported an error", v)
		}
		if value != v {
			t.Fatalf("decoded value = %d, want %d", value, v)
		}
	}
}

func TestCacheKeyDependsOnNameAndSource(t *testing.T) {
	base := Key("fn", "become #1\n")
	if Key("fn", "become #1\n") != base {
		t.Fatal("identical inputs hashed differently")
	}
	if Key("fn", "become #0\n") == base {
		t.Fatal("different sources hashed identically")
	}
	if Key("other", "become #1\n") == base {
		t.Fatal("different names hashed identically")
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get(Key("fn", "x")); ok {
		t.Fatal("empty cache reported a hit")
	}
	if c.Len() != 0 {
		t.Fatalf("empty cache Len = %d", c.Len())
	}
}
