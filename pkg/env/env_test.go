package env

import "testing"

func TestGetFallsBack(t *testing.T) {
	t.Setenv("ENV_TEST_SET", "value")

	if got := Get("ENV_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("expected set value, got %q", got)
	}
	if got := Get("ENV_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"YES":   true,
		"on":    true,
		"0":     false,
		"false": false,
		"no":    false,
		"off":   false,
	}
	for raw, want := range cases {
		t.Setenv("ENV_TEST_BOOL", raw)
		if got := GetBool("ENV_TEST_BOOL", !want); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", raw, got, want)
		}
	}

	t.Setenv("ENV_TEST_BOOL", "maybe")
	if !GetBool("ENV_TEST_BOOL", true) {
		t.Fatal("unparseable value should keep the fallback")
	}
	if GetBool("ENV_TEST_BOOL_UNSET", false) {
		t.Fatal("unset variable should keep the fallback")
	}
}
