package cli

import "testing"

func TestNewSearchCmd(t *testing.T) {
	cmd := NewSearchCmd()

	if cmd.Use != "search" {
		t.Errorf("Expected Use='search', got %q", cmd.Use)
	}

	for _, flag := range []string{"text", "action", "website", "event-type", "param", "min-confidence", "limit"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}
}

func TestNewDecideCmd(t *testing.T) {
	cmd := NewDecideCmd()

	if cmd.Use != "decide <action>" {
		t.Errorf("Expected Use='decide <action>', got %q", cmd.Use)
	}

	for _, flag := range []string{"website", "params", "context"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}

	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("expected an error for missing action argument")
	}
}
