package key

import (
	"testing"
)

func TestModifierHas(t *testing.T) {
	tests := []struct {
		mod    Modifier
		check  Modifier
		expect bool
	}{
		{ModNone, ModCtrl, false},
		{ModCtrl, ModCtrl, true},
		{ModCtrl | ModAlt, ModCtrl, true},
		{ModCtrl | ModAlt, ModAlt, true},
		{ModCtrl | ModAlt, ModShift, false},
		{ModCtrl | ModAlt | ModShift | ModMeta, ModMeta, true},
	}

	for _, tt := range tests {
		if got := tt.mod.Has(tt.check); got != tt.expect {
			t.Errorf("Modifier(%d).Has(%d) = %v, want %v", tt.mod, tt.check, got, tt.expect)
		}
	}
}

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModCtrl | ModShift, "Ctrl+Shift"},
		{ModShift | ModAlt | ModMeta, "Alt+Shift+Meta"},
	}

	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Modifier(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}

func TestModifierState(t *testing.T) {
	var s ModifierState

	if got := s.Update("ControlLeft", true); got != ModCtrl {
		t.Fatalf("after ControlLeft down = %v, want Ctrl", got)
	}
	if got := s.Update("ShiftRight", true); got != ModCtrl|ModShift {
		t.Fatalf("after ShiftRight down = %v, want Ctrl+Shift", got)
	}
	if got := s.Update("KeyV", true); got != ModCtrl|ModShift {
		t.Errorf("ordinary key changed modifiers to %v", got)
	}
	if got := s.Update("ControlLeft", false); got != ModShift {
		t.Errorf("after ControlLeft up = %v, want Shift", got)
	}
}

func TestModifierStateBothSides(t *testing.T) {
	var s ModifierState
	s.Update("ControlLeft", true)
	s.Update("ControlRight", true)
	s.Update("ControlLeft", false)

	if !s.Current().HasCtrl() {
		t.Error("Ctrl should stay held while ControlRight is down")
	}
}
