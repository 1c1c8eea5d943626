package lowering

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opal.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Options
		wantErr bool
	}{
		{
			name:    "explicit modes",
			content: "contracts: preconditions\noverflow: wrap\n",
			want:    Options{Contracts: ContractsPreconditions, Overflow: OverflowWrap},
		},
		{
			name:    "defaults fill omissions",
			content: "overflow: wrap\n",
			want:    Options{Contracts: ContractsAll, Overflow: OverflowWrap},
		},
		{
			name:    "none strips contracts",
			content: "contracts: none\n",
			want:    Options{Contracts: ContractsNone, Overflow: OverflowTrap},
		},
		{
			name:    "unknown contract mode",
			content: "contracts: sometimes\n",
			wantErr: true,
		},
		{
			name:    "unknown overflow mode",
			content: "overflow: saturate\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadOptions(writeOptions(t, tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadOptionsMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got != DefaultOptions() {
		t.Fatalf("got %+v, want defaults", got)
	}
}
