package ptr

import (
	"testing"

	"github.com/samber/mo"
)

func TestBool(t *testing.T) {
	if p := Bool(true); p == nil || !*p {
		t.Errorf("Bool(true) = %v", p)
	}
	if p := Bool(false); p == nil || *p {
		t.Errorf("Bool(false) = %v", p)
	}
}

func TestFromOption(t *testing.T) {
	if p := FromOption(mo.None[int]()); p != nil {
		t.Errorf("FromOption(None) = %v, want nil", *p)
	}
	p := FromOption(mo.Some(0))
	if p == nil || *p != 0 {
		t.Errorf("FromOption(Some(0)) = %v, want pointer to 0", p)
	}
}
