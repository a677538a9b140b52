package lexer

import "testing"

// TestBOMStripping verifies a leading UTF-8 BOM never reaches the scanner.
func TestBOMStripping(t *testing.T) {
	input := string(append(append([]byte{}, bomUTF8...), []byte("let x: i32 = 1;")...))
	l := New(input, "test.ts")
	tok := l.NextToken()
	if tok.Type != LET || tok.Literal != "let" {
		t.Fatalf("expected first token LET \"let\", got %v %q", tok.Type, tok.Literal)
	}
}

// TestNFCNormalization verifies NFD identifiers are folded to NFC so that
// lexically equivalent source produces identical token streams regardless
// of the encoding variant the file was saved with.
func TestNFCNormalization(t *testing.T) {
	nfc := "café"
	nfd := "café"

	tokensFor := func(src string) []Token {
		l := New("let "+src+": i32 = 0;", "test.ts")
		var toks []Token
		for {
			tok := l.NextToken()
			toks = append(toks, tok)
			if tok.Type == EOF {
				break
			}
		}
		return toks
	}

	a, b := tokensFor(nfc), tokensFor(nfd)
	if len(a) != len(b) {
		t.Fatalf("token count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Literal != b[i].Literal {
			t.Errorf("token %d differs: %v %q vs %v %q", i, a[i].Type, a[i].Literal, b[i].Type, b[i].Literal)
		}
	}
}
