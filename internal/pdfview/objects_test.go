package pdfview

import (
	"strings"
	"testing"
)

func TestObjects(t *testing.T) {
	o := NewObjects()

	a := o.Create("a.pdf", []byte("aaa"))
	b := o.Create("b.pdf", []byte("bbb"))
	if a == b {
		t.Fatal("object URLs must be unique")
	}
	if !strings.HasPrefix(a, "blob:") {
		t.Errorf("object URL %q should use the blob scheme", a)
	}

	data, name, ok := o.Get(a)
	if !ok || string(data) != "aaa" || name != "a.pdf" {
		t.Errorf("Get(a) = %q, %q, %v", data, name, ok)
	}

	o.Revoke(a)
	if _, _, ok := o.Get(a); ok {
		t.Error("revoked URL should not resolve")
	}
	o.Revoke("blob:contractqa/unknown")
	if _, _, ok := o.Get(b); !ok {
		t.Error("revoking one URL must not affect another")
	}
}
