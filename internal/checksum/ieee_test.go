package checksum

import "testing"

func TestIEEEStandardVector(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", []byte{}, 0},
		{"123456789", []byte("123456789"), 0xcbf43926},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IEEE(tt.data)
			if got != tt.want {
				t.Errorf("IEEE(%v) = 0x%08x, want 0x%08x", tt.data, got, tt.want)
			}
		})
	}
}

func TestIEEEUpdateMatchesOneShot(t *testing.T) {
	a := []byte("hello ")
	b := []byte("world")

	want := IEEE(append(append([]byte{}, a...), b...))

	got := IEEEUpdate(IEEE(a), b)
	if got != want {
		t.Errorf("IEEEUpdate = 0x%08x, want 0x%08x", got, want)
	}
}

func TestIEEEDiffersFromCRC32C(t *testing.T) {
	data := []byte("123456789")
	if IEEE(data) == Value(data) {
		t.Fatalf("CRC-32/IEEE and CRC-32C must use different polynomials")
	}
}
