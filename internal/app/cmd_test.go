package app

import (
	"testing"
)

func TestParseCommand_DefaultsToServe(t *testing.T) {
	cmd := ParseCommand([]string{})
	if cmd != CommandServe {
		t.Errorf("ParseCommand([]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"serve"}, CommandServe},
		{[]string{"migrate"}, CommandMigrate},
		{[]string{"migrate", "down", "2"}, CommandMigrate},
		{[]string{"healthcheck"}, CommandHealthcheck},
		{[]string{"unknown"}, CommandServe},
	}

	for _, tt := range tests {
		if got := ParseCommand(tt.args); got != tt.want {
			t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestParseMigrateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    MigrateOptions
		wantErr bool
	}{
		{name: "no args", args: nil, want: MigrateOptions{Direction: MigrateUp}},
		{name: "up", args: []string{"up"}, want: MigrateOptions{Direction: MigrateUp}},
		{name: "down defaults to one step", args: []string{"down"}, want: MigrateOptions{Direction: MigrateDown, Steps: 1}},
		{name: "down with steps", args: []string{"down", "3"}, want: MigrateOptions{Direction: MigrateDown, Steps: 3}},
		{name: "down zero", args: []string{"down", "0"}, wantErr: true},
		{name: "down not a number", args: []string{"down", "all"}, wantErr: true},
		{name: "up with extra", args: []string{"up", "2"}, wantErr: true},
		{name: "unknown", args: []string{"sideways"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMigrateArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMigrateArgs(%v) expected error, got %+v", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMigrateArgs(%v) unexpected error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("ParseMigrateArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
