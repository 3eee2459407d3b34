package javaser

import "testing"

func TestEnumConstantEqual(t *testing.T) {
	cls := &ClassDesc{Name: "SomeEnum", IsEnum: true}
	ec := EnumConstant{Class: cls, Name: "ONE"}

	if !ec.Equal("ONE") {
		t.Error("EnumConstant should equal its name as a bare string")
	}
	if ec.Equal("TWO") {
		t.Error("EnumConstant should not equal a different string")
	}
	if !ec.Equal(EnumConstant{Class: cls, Name: "ONE"}) {
		t.Error("EnumConstant should equal another EnumConstant with the same name")
	}

	// Value-equal to a string, but never type-identical to one.
	var v Value = ec
	if _, isString := v.(string); isString {
		t.Error("EnumConstant must not be a string by type")
	}
}

func TestEndBlockNeverEqualsOrdinaryValue(t *testing.T) {
	var v Value = EndBlock
	if v == nil {
		t.Error("EndBlock must not be nil")
	}
	if _, ok := v.(string); ok {
		t.Error("EndBlock must not be a string")
	}
}
