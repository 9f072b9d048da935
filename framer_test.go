package resocket

import (
	"strings"
	"testing"
)

func feedAll(t *testing.T, f *framer, chunks ...string) []string {
	t.Helper()

	var out []string
	for _, c := range chunks {
		msgs, err := f.feed([]byte(c))
		if err != nil {
			t.Fatalf("feed(%q) failed: %v", c, err)
		}
		for _, m := range msgs {
			out = append(out, string(m))
		}
	}
	return out
}

func TestFramer_SingleMessage(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	got := feedAll(t, f, "hello<EOF>")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("messages = %q, want [hello]", got)
	}
	if f.pending() != 0 {
		t.Errorf("pending = %d, want 0", f.pending())
	}
}

func TestFramer_ByteAtATime(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	var got []string
	for _, b := range "ping<EOF>pong<EOF>" {
		got = append(got, feedAll(t, f, string(b))...)
	}
	if strings.Join(got, ",") != "ping,pong" {
		t.Fatalf("messages = %q, want [ping pong]", got)
	}
}

func TestFramer_DelimiterSplitAcrossReads(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	got := feedAll(t, f, "abc<E", "O", "F>")
	if len(got) != 1 || got[0] != "abc" {
		t.Fatalf("messages = %q, want [abc]", got)
	}
}

func TestFramer_MultipleInOneRead(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	got := feedAll(t, f, "a<EOF>b<EOF><EOF>c")
	if strings.Join(got, ",") != "a,b," {
		t.Fatalf("messages = %q, want [a b \"\"]", got)
	}
	if f.pending() != 1 {
		t.Errorf("pending = %d, want 1", f.pending())
	}
}

func TestFramer_TrailingBytesPreserved(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	got := feedAll(t, f, "first<EOF>sec", "ond<EOF>")
	if strings.Join(got, ",") != "first,second" {
		t.Fatalf("messages = %q, want [first second]", got)
	}
}

func TestFramer_MessagesAreCopies(t *testing.T) {
	f := newFramer("|", 1024)

	msgs, err := f.feed([]byte("one|two"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if _, err := f.feed([]byte("XXXXXXXX|")); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if string(msgs[0]) != "one" {
		t.Errorf("earlier message mutated: %q", msgs[0])
	}
}

func TestFramer_TooLarge(t *testing.T) {
	f := newFramer("<EOF>", 8)

	msgs, err := f.feed([]byte("ok<EOF>123456789"))
	if err != ErrMessageTooLarge {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if len(msgs) != 1 || string(msgs[0]) != "ok" {
		t.Errorf("messages before the error = %q, want [ok]", msgs)
	}
}

func TestFramer_NoDelimiter(t *testing.T) {
	f := newFramer("<EOF>", 1024)

	if got := feedAll(t, f, "partial", " data"); len(got) != 0 {
		t.Fatalf("messages = %q, want none", got)
	}
	if f.pending() != len("partial data") {
		t.Errorf("pending = %d, want %d", f.pending(), len("partial data"))
	}
}

func TestFramer_TooLargeCompleteMessage(t *testing.T) {
	f := newFramer("<EOF>", 8)

	msgs, err := f.feed([]byte("ok<EOF>0123456789abcdef<EOF>x"))
	if err != ErrMessageTooLarge {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
	if len(msgs) != 1 || string(msgs[0]) != "ok" {
		t.Errorf("messages before the error = %q, want [ok]", msgs)
	}
}

func TestFramer_MessageAtLimit(t *testing.T) {
	f := newFramer("<EOF>", 8)

	got := feedAll(t, f, "01234567<EOF>")
	if len(got) != 1 || got[0] != "01234567" {
		t.Fatalf("messages = %q, want [01234567]", got)
	}
}
