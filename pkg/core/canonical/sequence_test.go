package canonical

import (
	"errors"
	"testing"
)

func TestSequenceEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		values  []Value
		elem    Kind
		encoded string
	}{
		{"simple", []Value{Text("a"), Text("b"), Text("c")}, KindText, "a,b,c"},
		{"empty", []Value{}, KindText, ""},
		{"single", []Value{Text("x")}, KindText, "x"},
		{"integers", []Value{Integer(1), Integer(22)}, KindInteger, "1,22"},
	}

	for _, tt := range tests {
		encoded, err := EncodeSequence(tt.values)
		if err != nil {
			t.Errorf("%s: EncodeSequence failed: %v", tt.name, err)
			continue
		}
		if encoded != tt.encoded {
			t.Errorf("%s: EncodeSequence = %q, want %q", tt.name, encoded, tt.encoded)
		}

		decoded, err := DecodeSequence(encoded, tt.elem)
		if err != nil {
			t.Errorf("%s: DecodeSequence failed: %v", tt.name, err)
			continue
		}
		if !Equal(Sequence(tt.values...), Sequence(decoded...)) {
			t.Errorf("%s: round-trip mismatch", tt.name)
		}
	}
}

// Значение, содержащее символ разделителя, экранируется и
// round-trip'ится точно — никогда не усекается молча
func TestSequenceDelimiterEscaping(t *testing.T) {
	values := []Value{Text("a,b"), Text("c"), Text(`back\slash`), Text(`,`)}

	encoded, err := EncodeSequence(values)
	if err != nil {
		t.Fatalf("EncodeSequence failed: %v", err)
	}

	want := `a\,b,c,back\\slash,\,`
	if encoded != want {
		t.Errorf("EncodeSequence = %q, want %q", encoded, want)
	}

	decoded, err := DecodeSequence(encoded, KindText)
	if err != nil {
		t.Fatalf("DecodeSequence failed: %v", err)
	}

	if len(decoded) != len(values) {
		t.Fatalf("expected %d elements, got %d", len(values), len(decoded))
	}
	for i := range values {
		if !Equal(values[i], decoded[i]) {
			t.Errorf("element %d mismatch: %q != %q",
				i, *values[i].StringValue, *decoded[i].StringValue)
		}
	}
}

func TestSequenceEmptyElementRejected(t *testing.T) {
	_, err := EncodeSequence([]Value{Text("a"), Text("")})
	if err == nil {
		t.Fatal("expected error for empty sequence element")
	}
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Errorf("expected IntegrityError, got %T", err)
	}
}

func TestSequenceMalformedEscape(t *testing.T) {
	for _, input := range []string{`a\`, `a\b`, `\x`} {
		_, err := DecodeSequence(input, KindText)
		if err == nil {
			t.Errorf("DecodeSequence(%q): expected error", input)
			continue
		}
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Errorf("DecodeSequence(%q): expected IntegrityError, got %T", input, err)
		}
	}
}

func TestSequenceOfTimestamps(t *testing.T) {
	values := []Value{}
	for _, s := range []string{"2020-01-01", "2020-02-01"} {
		conv := NewConverter()
		v, err := conv.ParseValue(s, FieldDef{Kind: KindTimestamp})
		if err != nil {
			t.Fatalf("ParseValue(%q) failed: %v", s, err)
		}
		values = append(values, *v)
	}

	encoded, err := EncodeSequence(values)
	if err != nil {
		t.Fatalf("EncodeSequence failed: %v", err)
	}

	decoded, err := DecodeSequence(encoded, KindTimestamp)
	if err != nil {
		t.Fatalf("DecodeSequence failed: %v", err)
	}
	if !Equal(Sequence(values...), Sequence(decoded...)) {
		t.Error("timestamp sequence round-trip mismatch")
	}
}
