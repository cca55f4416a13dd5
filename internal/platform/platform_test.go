package platform

import (
	"context"
	"reflect"
	"runtime"
	"testing"
)

func TestNewInfo(t *testing.T) {
	tests := []struct {
		goos, goarch string
		wantOS       string
		wantArches   []string
		wantErr      bool
	}{
		{"linux", "amd64", OSLinux, []string{"x86_64"}, false},
		{"linux", "arm64", OSLinux, []string{"aarch64"}, false},
		{"linux", "386", OSLinux, []string{"i386"}, false},
		{"darwin", "amd64", OSMacOS, []string{"universal", "x86_64"}, false},
		{"darwin", "arm64", OSMacOS, []string{"universal", "arm64"}, false},
		{"windows", "amd64", OSWindows, []string{"x86_64", "i386"}, false},
		{"windows", "arm64", OSWindows, []string{"arm64"}, false},
		{"windows", "386", OSWindows, []string{"i386"}, false},
		{"freebsd", "amd64", "", nil, true},
		{"linux", "riscv64", "", nil, true},
		{"darwin", "386", "", nil, true},
	}

	for _, tt := range tests {
		info, err := newInfo(tt.goos, tt.goarch)
		if tt.wantErr {
			if err == nil {
				t.Errorf("newInfo(%s, %s): expected error", tt.goos, tt.goarch)
			}
			continue
		}
		if err != nil {
			t.Errorf("newInfo(%s, %s): %v", tt.goos, tt.goarch, err)
			continue
		}
		if info.ManifestOS != tt.wantOS {
			t.Errorf("newInfo(%s, %s): ManifestOS = %q, want %q", tt.goos, tt.goarch, info.ManifestOS, tt.wantOS)
		}
		if !reflect.DeepEqual(info.ManifestArches, tt.wantArches) {
			t.Errorf("newInfo(%s, %s): ManifestArches = %v, want %v", tt.goos, tt.goarch, info.ManifestArches, tt.wantArches)
		}
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debian", FamilyDebian},
		{"Ubuntu", FamilyDebian},
		{"rhel", FamilyRHEL},
		{"rocky", FamilyRHEL},
		{"  Alpine  ", FamilyAlpine},
		{"arch", FamilyArch},
		{"slackware", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		if got := mapFamily(tt.in); got != tt.want {
			t.Errorf("mapFamily(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUsesMusl(t *testing.T) {
	alpine := &Info{OS: "linux", Family: FamilyAlpine}
	if !alpine.UsesMusl() {
		t.Error("alpine host not reported as musl")
	}

	debian := &Info{OS: "linux", Family: FamilyDebian}
	if debian.UsesMusl() {
		t.Error("debian host reported as musl")
	}

	mac := &Info{OS: "darwin", Family: FamilyAlpine}
	if mac.UsesMusl() {
		t.Error("non-linux host reported as musl")
	}
}

func TestDetectCurrentHost(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
	default:
		t.Skipf("no release packages for %s", runtime.GOOS)
	}

	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("Detect reported %s/%s, want %s/%s", info.OS, info.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if info.ManifestOS == "" || len(info.ManifestArches) == 0 {
		t.Errorf("Detect left manifest identifiers empty: %+v", info)
	}
}
