package encoding

import (
	"errors"
	"math"
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	vector := []float32{0.1, -2.5, 3.75, 0}

	data, err := EncodeVector(vector)
	if err != nil {
		t.Fatalf("EncodeVector failed: %v", err)
	}
	// 4-byte length prefix + 4 bytes per value
	if len(data) != 4+4*len(vector) {
		t.Errorf("Unexpected encoded length %d", len(data))
	}

	decoded, err := DecodeVector(data)
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	if len(decoded) != len(vector) {
		t.Fatalf("Decoded length %d, want %d", len(decoded), len(vector))
	}
	for i := range vector {
		if decoded[i] != vector[i] {
			t.Errorf("Value %d: got %v, want %v", i, decoded[i], vector[i])
		}
	}
}

func TestDecodeVectorRejectsCorruptData(t *testing.T) {
	if _, err := DecodeVector(nil); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for nil data, got %v", err)
	}
	if _, err := DecodeVector([]byte{1, 2}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for short data, got %v", err)
	}

	// Length prefix claims more values than the payload carries
	data, err := EncodeVector([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeVector failed: %v", err)
	}
	if _, err := DecodeVector(data[:len(data)-4]); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for truncated data, got %v", err)
	}
}

func TestValidateVector(t *testing.T) {
	if err := ValidateVector([]float32{1, 2}); err != nil {
		t.Errorf("Valid vector rejected: %v", err)
	}
	if err := ValidateVector(nil); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for empty vector, got %v", err)
	}
	if err := ValidateVector([]float32{float32(math.NaN())}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for NaN, got %v", err)
	}
	if err := ValidateVector([]float32{float32(math.Inf(1))}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Expected ErrInvalidVector for Inf, got %v", err)
	}
}
