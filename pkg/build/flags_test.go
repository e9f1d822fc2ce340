// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

func TestInitializeKeepsDevelopmentDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name == "" {
		t.Error("build name is empty")
	}
	if flags.Version == "" {
		t.Error("build version is empty")
	}
}

func TestVersionString(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	v := VersionString()
	if !strings.Contains(v, GetBuildFlags().Name) {
		t.Errorf("version string %q does not contain the build name", v)
	}
}
