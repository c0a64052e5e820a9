package wavetable

import (
	"errors"
	"math"
	"testing"
)

const testLen = 160 // 16 kHz / 100 Hz

func TestLength(t *testing.T) {
	if got := Length(16000, 100); got != testLen {
		t.Fatalf("Length(16000, 100) = %d, want %d", got, testLen)
	}
	if got := Length(16000, 0); got != 0 {
		t.Errorf("Length with zero reference = %d, want 0", got)
	}
}

func TestTablesShapeInvariants(t *testing.T) {
	bank := NewBank(testLen)
	wantFirst := map[Shape]uint8{Sine: 0, Triangle: 0, Square: 255, Sawtooth: 0}

	for s := Shape(0); s < NumShapes; s++ {
		tbl := bank.Table(s)
		if len(tbl) != testLen {
			t.Errorf("%s: len = %d, want %d", s, len(tbl), testLen)
		}
		if tbl[0] != wantFirst[s] {
			t.Errorf("%s: first sample = %d, want %d", s, tbl[0], wantFirst[s])
		}
		lo, hi := uint8(255), uint8(0)
		for _, v := range tbl {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if lo != 0 || hi != 255 && s != Sawtooth {
			t.Errorf("%s: range [%d,%d], want [0,255]", s, lo, hi)
		}
	}
}

func TestSineValues(t *testing.T) {
	tbl := GenerateSine(testLen)
	if tbl[testLen/2] != 255 {
		t.Errorf("sine peak at half cycle = %d, want 255", tbl[testLen/2])
	}
	if tbl[testLen/4] != 128 && tbl[testLen/4] != 127 {
		t.Errorf("sine quarter cycle = %d, want mid-scale", tbl[testLen/4])
	}
	if tbl[testLen-1] > 1 {
		t.Errorf("sine last sample = %d, want near 0 to close the cycle", tbl[testLen-1])
	}
}

func TestTriangleValues(t *testing.T) {
	tbl := GenerateTriangle(testLen)
	// 255 / 80 = 3.1875 per step
	cases := []struct {
		i    int
		want uint8
	}{
		{0, 0}, {1, 3}, {2, 6}, {40, 127}, {80, 255}, {81, 251}, {159, 3},
	}
	for _, c := range cases {
		if tbl[c.i] != c.want {
			t.Errorf("triangle[%d] = %d, want %d", c.i, tbl[c.i], c.want)
		}
	}
	for i := 1; i <= 80; i++ {
		if tbl[i] < tbl[i-1] {
			t.Fatalf("triangle not rising at %d: %d < %d", i, tbl[i], tbl[i-1])
		}
	}
}

func TestTriangleOddLengthStaysInRange(t *testing.T) {
	tbl := GenerateTriangle(161)
	if tbl[0] != 0 {
		t.Fatalf("first sample = %d, want 0", tbl[0])
	}
	if tbl[81] != 255 {
		t.Errorf("peak clamps to 255, got %d", tbl[81])
	}
}

func TestSquareValues(t *testing.T) {
	tbl := GenerateSquare(testLen)
	for i, v := range tbl {
		want := uint8(0)
		if i < 80 {
			want = 255
		}
		if v != want {
			t.Fatalf("square[%d] = %d, want %d", i, v, want)
		}
	}
	odd := GenerateSquare(5)
	if odd[2] != 255 || odd[3] != 0 {
		t.Errorf("odd square flips at ceil(n/2): %v", odd)
	}
}

func TestSawtoothValues(t *testing.T) {
	tbl := GenerateSawtooth(testLen)
	for i, v := range tbl {
		if want := uint8(255 * i / testLen); v != want {
			t.Fatalf("sawtooth[%d] = %d, want %d", i, v, want)
		}
	}
	if tbl[testLen-1] != 253 {
		t.Errorf("sawtooth last = %d, want 253", tbl[testLen-1])
	}
}

func TestBankAtInterpolates(t *testing.T) {
	bank := NewBank(testLen)
	if got := bank.At(Sawtooth, 10); got != float64(bank.Table(Sawtooth)[10]) {
		t.Errorf("integer phase = %v, want table value", got)
	}

	a, b := float64(bank.Table(Triangle)[3]), float64(bank.Table(Triangle)[4])
	if got, want := bank.At(Triangle, 3.25), a+(b-a)*0.25; math.Abs(got-want) > 1e-9 {
		t.Errorf("At(3.25) = %v, want %v", got, want)
	}

	// Last index interpolates towards index 0.
	last := float64(bank.Table(Square)[testLen-1])
	first := float64(bank.Table(Square)[0])
	if got, want := bank.At(Square, testLen-0.5), last+(first-last)*0.5; got != want {
		t.Errorf("wrap interpolation = %v, want %v", got, want)
	}
}

func TestParseShape(t *testing.T) {
	for s := Shape(0); s < NumShapes; s++ {
		got, err := ParseShape(" " + s.String() + " ")
		if err != nil || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseShape("SAWTOOTH"); err != nil {
		t.Errorf("case-insensitive parse failed: %v", err)
	}
	if _, err := ParseShape("noise"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("ParseShape(noise) err = %v, want ErrUnknownShape", err)
	}
	if Sawtooth.Next() != Sine {
		t.Errorf("Sawtooth.Next() = %v, want sine", Sawtooth.Next())
	}
}
