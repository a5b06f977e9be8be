package apps

import "testing"

func TestPackageName(t *testing.T) {
	if got := PackageName("Settings"); got != "com.android.settings" {
		t.Errorf("PackageName(Settings) = %q", got)
	}
	if got := PackageName("微信"); got != "com.tencent.mm" {
		t.Errorf("PackageName(微信) = %q", got)
	}
	if got := PackageName("chrome"); got != "com.android.chrome" {
		t.Errorf("Expected case-insensitive lookup, got %q", got)
	}
	if got := PackageName("NotAnApp"); got != "" {
		t.Errorf("Expected empty package for unknown app, got %q", got)
	}
}

func TestAppName(t *testing.T) {
	if got := AppName("com.android.chrome"); got != "Chrome" {
		t.Errorf("AppName(com.android.chrome) = %q", got)
	}
	if got := AppName("com.unknown.pkg"); got != "" {
		t.Errorf("Expected empty name for unknown package, got %q", got)
	}
}

func TestSupportedApps(t *testing.T) {
	names := SupportedApps()
	if len(names) != len(Packages) {
		t.Fatalf("Expected %d names, got %d", len(Packages), len(names))
	}
}
