package dac

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultControlNibble(t *testing.T) {
	if got := DefaultControl.Nibble(); got != 0b0011_0000 {
		t.Fatalf("DefaultControl.Nibble() = %08b, want 00110000", got)
	}
	if DefaultControl.String() != "0011" {
		t.Errorf("String() = %q", DefaultControl.String())
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		sample uint16
		want   Frame
	}{
		{0x000, Frame{0x30, 0x00}},
		{0xABC, Frame{0x3A, 0xBC}},
		{0xFFF, Frame{0x3F, 0xFF}},
		{0x1234, Frame{0x3F, 0xFF}}, // clipped to 12 bits
	}
	for _, c := range cases {
		if got := Encode(DefaultControl, c.sample); got != c.want {
			t.Errorf("Encode(%#x) = % X, want % X", c.sample, got, c.want)
		}
	}
}

func TestControlBitsRoundTrip(t *testing.T) {
	for n := 0; n < 16; n++ {
		nibble := uint8(n) << 4
		c := ControlFromNibble(nibble)
		if c.Nibble() != nibble {
			t.Errorf("nibble %04b decoded to %+v, re-encoded %08b", n, c, c.Nibble())
		}
	}
	ctrl, sample := Decode(Encode(Control{ChannelB: true, Buffered: true}, 0x5A5))
	if !ctrl.ChannelB || !ctrl.Buffered || ctrl.Gain1x || ctrl.Active || sample != 0x5A5 {
		t.Errorf("Decode = %+v, %#x", ctrl, sample)
	}
}

// busLog records pin and bus activity in order.
type busLog struct {
	ops  []string
	sent []byte
	fail int // fail the nth transfer (1-based), 0 = never
}

func (b *busLog) High() { b.ops = append(b.ops, "cs-high") }
func (b *busLog) Low()  { b.ops = append(b.ops, "cs-low") }
func (b *busLog) Transfer(w byte) (byte, error) {
	b.sent = append(b.sent, w)
	b.ops = append(b.ops, "xfer")
	if b.fail == len(b.sent) {
		return 0, errors.New("bus fault")
	}
	return 0, nil
}

func TestConverterWriteSequence(t *testing.T) {
	bus := &busLog{}
	c := NewConverter(bus, bus, DefaultControl)
	if err := c.Write(0x7FF); err != nil {
		t.Fatalf("Write: %v", err)
	}

	wantOps := []string{"cs-high", "cs-low", "xfer", "xfer", "cs-high"}
	if !reflect.DeepEqual(bus.ops, wantOps) {
		t.Errorf("ops = %v, want %v", bus.ops, wantOps)
	}
	if !reflect.DeepEqual(bus.sent, []byte{0x37, 0xFF}) {
		t.Errorf("sent = % X, want 37 FF", bus.sent)
	}
}

func TestConverterReleasesSelectOnError(t *testing.T) {
	bus := &busLog{fail: 1}
	c := NewConverter(bus, bus, DefaultControl)
	if err := c.Write(1); err == nil {
		t.Fatal("expected transfer error")
	}
	if last := bus.ops[len(bus.ops)-1]; last != "cs-high" {
		t.Errorf("last op = %s, want cs-high", last)
	}
	if len(bus.sent) != 1 {
		t.Errorf("sent %d bytes after failure, want 1", len(bus.sent))
	}
}

func TestDecoderThroughConverter(t *testing.T) {
	var got []uint16
	d := NewDecoder(func(c Control, s uint16) {
		if c != DefaultControl {
			t.Errorf("control = %+v", c)
		}
		got = append(got, s)
	})
	c := NewConverter(d, d, DefaultControl)

	for _, s := range []uint16{0, 1, 0x800, MaxValue} {
		if err := c.Write(s); err != nil {
			t.Fatalf("Write(%d): %v", s, err)
		}
	}
	if !reflect.DeepEqual(got, []uint16{0, 1, 0x800, MaxValue}) {
		t.Errorf("decoded %v", got)
	}
	if d.Frames() != 4 || d.Errors() != 0 {
		t.Errorf("frames=%d errors=%d", d.Frames(), d.Errors())
	}
}

func TestDecoderFramingErrors(t *testing.T) {
	d := NewDecoder(nil)
	if _, err := d.Transfer(0x30); !errors.Is(err, ErrNotSelected) {
		t.Errorf("unselected transfer err = %v", err)
	}

	d.Low()
	d.Transfer(0x30)
	d.High() // short frame
	d.Low()
	d.Transfer(1)
	d.Transfer(2)
	if _, err := d.Transfer(3); !errors.Is(err, ErrFrameLength) {
		t.Errorf("third byte err = %v", err)
	}
	d.High()

	if d.Errors() != 3 {
		t.Errorf("errors = %d, want 3", d.Errors())
	}
	if d.Frames() != 1 {
		t.Errorf("frames = %d, want 1", d.Frames())
	}
}
