package cache

import (
	"strings"
	"testing"
	"time"
)

func TestHash(t *testing.T) {
	a, b := Hash([]byte("%PDF-1.7 a")), Hash([]byte("%PDF-1.7 b"))
	if len(a) != 64 || a == b {
		t.Errorf("hashes = %s %s", a, b)
	}
	if Hash([]byte("%PDF-1.7 a")) != a {
		t.Errorf("hash not stable")
	}
}

func TestKey(t *testing.T) {
	if got := Key("1.2.0", "abc"); got != "outline:v1.2.0:abc" {
		t.Errorf("Key = %q", got)
	}
}

func TestNewResultStoreBadURL(t *testing.T) {
	_, err := NewResultStore("not-a-url", "1", time.Hour)
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Errorf("err = %v", err)
	}
}
