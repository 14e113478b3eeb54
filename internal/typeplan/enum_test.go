package typeplan

import (
	"testing"
	"unsafe"
)

func TestRenderEnumSignedKnown(t *testing.T) {
	info := &enumInfo{name: "Color", signed: true, values: map[uint64]string{1: "Red", 2: "Green"}}
	p := &Printer{Render: renderEnumSigned(4), Info: info}
	v := int32(2)
	if got := render(t, p, unsafe.Pointer(&v)); got != "Color::Green" {
		t.Fatalf("got %q, want Color::Green", got)
	}
}

func TestRenderEnumSignedUnknown(t *testing.T) {
	info := &enumInfo{name: "Color", signed: true, values: map[uint64]string{1: "Red"}}
	p := &Printer{Render: renderEnumSigned(4), Info: info}
	v := int32(99)
	if got := render(t, p, unsafe.Pointer(&v)); got != "static_cast<Color>(99)" {
		t.Fatalf("got %q, want static_cast<Color>(99)", got)
	}
}

func TestRenderEnumSignedMostNegative(t *testing.T) {
	info := &enumInfo{name: "Color", signed: true, values: map[uint64]string{}}
	p := &Printer{Render: renderEnumSigned(8), Info: info}
	v := int64(-9223372036854775808)
	want := "static_cast<Color>(-9223372036854775807-1)"
	if got := render(t, p, unsafe.Pointer(&v)); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderEnumUnsignedKnown(t *testing.T) {
	info := &enumInfo{name: "Flags", signed: false, values: map[uint64]string{18: "Both"}}
	p := &Printer{Render: renderEnumUnsigned(8), Info: info}
	v := uint64(18)
	if got := render(t, p, unsafe.Pointer(&v)); got != "Flags::Both" {
		t.Fatalf("got %q, want Flags::Both", got)
	}
}

func TestRenderEnumUnsignedOverflowsSigned64(t *testing.T) {
	info := &enumInfo{name: "Flags", signed: false, values: map[uint64]string{}}
	p := &Printer{Render: renderEnumUnsigned(8), Info: info}
	v := uint64(18446744073709551615)
	want := "static_cast<Flags>(18446744073709551615ull)"
	if got := render(t, p, unsafe.Pointer(&v)); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEnumDispatch(t *testing.T) {
	if _, ok := enumDispatch(4, true); !ok {
		t.Fatal("expected signed width 4 to dispatch")
	}
	if _, ok := enumDispatch(8, false); !ok {
		t.Fatal("expected unsigned width 8 to dispatch")
	}
	if _, ok := enumDispatch(3, true); ok {
		t.Fatal("width 3 should not dispatch")
	}
}
