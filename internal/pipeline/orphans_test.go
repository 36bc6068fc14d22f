package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestNewOrphanFilter - Type validation
// ---------------------------------------------------------------------------

func TestNewOrphanFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		types   []string
		wantErr error
	}{
		{"defaults", DefaultOrphanTypes, nil},
		{"extra type", []string{"OVSBridge", "OVSPort", "OVSIntPort"}, nil},
		{"no types", nil, ErrInvalidOrphanType},
		{"regex metacharacters", []string{"OVS.*"}, ErrInvalidOrphanType},
		{"empty type", []string{""}, ErrInvalidOrphanType},
		{"leading digit", []string{"1OVS"}, ErrInvalidOrphanType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOrphanFilter(tt.types)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewOrphanFilter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestOrphanFilter_Filter - Paragraph classification and rejoining
// ---------------------------------------------------------------------------

func TestOrphanFilter_Filter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		want        string
		wantDropped int
	}{
		{
			name:  "empty document",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "\n  \n\t\n",
			want:  "",
		},
		{
			name:  "single paragraph gains trailing newline",
			input: "auto lo\niface lo inet loopback",
			want:  "auto lo\niface lo inet loopback\n",
		},
		{
			name:        "bridge stanza dropped",
			input:       "auto lo\n\nauto vmbr0\niface vmbr0 inet manual\n    ovs_type OVSBridge\n\nauto eth0\n",
			want:        "auto lo\n\nauto eth0\n",
			wantDropped: 1,
		},
		{
			name:        "port stanza dropped",
			input:       "allow-vmbr0 vx1\niface vx1 inet manual\n    ovs_type OVSPort\n",
			want:        "",
			wantDropped: 1,
		},
		{
			name:        "tab between key and type",
			input:       "iface x inet manual\n\tovs_type\tOVSBridge\n\nkeep\n",
			want:        "keep\n",
			wantDropped: 1,
		},
		{
			name:  "match is case-sensitive",
			input: "iface x inet manual\n    ovs_type ovsbridge\n",
			want:  "iface x inet manual\n    ovs_type ovsbridge\n",
		},
		{
			name:  "other ovs types survive",
			input: "iface x inet manual\n    ovs_type OVSIntPort\n",
			want:  "iface x inet manual\n    ovs_type OVSIntPort\n",
		},
		{
			name:  "blank line runs collapse to one",
			input: "a\n\n\n\nb\n   \n\t\nc\n\n\n",
			want:  "a\n\nb\n\nc\n",
		},
		{
			name:  "indentation and inner trailing spaces kept",
			input: "  auto lo  \niface lo inet loopback   \n",
			want:  "  auto lo  \niface lo inet loopback\n",
		},
	}

	f, err := NewOrphanFilter(DefaultOrphanTypes)
	if err != nil {
		t.Fatalf("NewOrphanFilter() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, dropped := f.Filter(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
			if dropped != tt.wantDropped {
				t.Errorf("Filter() dropped = %d, want %d", dropped, tt.wantDropped)
			}
		})
	}
}

func TestOrphanFilter_CustomTypes(t *testing.T) {
	t.Parallel()

	f, err := NewOrphanFilter([]string{"OVSBond"})
	if err != nil {
		t.Fatalf("NewOrphanFilter() error = %v", err)
	}

	input := "iface bond0 inet manual\n    ovs_type OVSBond\n\niface vmbr0 inet manual\n    ovs_type OVSBridge\n"
	want := "iface vmbr0 inet manual\n    ovs_type OVSBridge\n"

	got, dropped := f.Filter(input)
	if got != want {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
	if dropped != 1 {
		t.Errorf("Filter() dropped = %d, want 1", dropped)
	}
}
