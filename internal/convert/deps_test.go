package convert

import (
	"testing"
)

type fakeManifest struct {
	have  map[string]bool
	added map[string]string
}

func newFakeManifest(have ...string) *fakeManifest {
	f := &fakeManifest{have: map[string]bool{}, added: map[string]string{}}
	for _, h := range have {
		f.have[h] = true
	}
	return f
}

func (f *fakeManifest) HasDependency(name string) bool { return f.have[name] }

func (f *fakeManifest) AddDependency(name, version string) {
	f.have[name] = true
	f.added[name] = version
}

func TestPackageName_Collapsing(t *testing.T) {
	cases := []struct {
		path, want string
	}{
		{"react", "react"},
		{"three/examples/jsm/controls/OrbitControls", "three"},
		{"@react-three/fiber", "@react-three/fiber"},
		{"@react-three/fiber/native", "@react-three/fiber"},
		{"./Button", ""},
		{"../shared/utils", ""},
		{"/abs/path", ""},
		{"data:text/javascript;base64,AAAA", ""},
		{"https://esm.sh/lodash", ""},
	}
	for _, c := range cases {
		if got := packageName(c.path); got != c.want {
			t.Errorf("packageName(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestConvert_AddsMissingDependencies(t *testing.T) {
	src := `import { useState } from 'react';
import { Heart } from 'lucide-react';
import { OrbitControls } from 'three/examples/jsm/controls/OrbitControls';
import styles from './app.module.css';

export default function App() {
  return <Heart />;
}
`
	manifest := newFakeManifest("react", "react-dom", "remotion")
	res, err := ConvertWithOptions(src, Options{Manifest: manifest})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if v := res.AddedDependencies["lucide-react"]; v != "0.441.0" {
		t.Fatalf("lucide-react = %q, want pinned version", v)
	}
	if v := res.AddedDependencies["three"]; v != "0.167.1" {
		t.Fatalf("three = %q, want pinned version", v)
	}
	if _, ok := res.AddedDependencies["react"]; ok {
		t.Fatal("react is already present, must not be re-added")
	}
	if _, ok := manifest.added["./app.module.css"]; ok {
		t.Fatal("relative import must not become a dependency")
	}
	if !hasNote(res, NoteDependencyAdded) {
		t.Fatalf("expected dependency note, got %v", res.Notes)
	}
}

func TestConvert_UnknownPackageGetsLatest(t *testing.T) {
	src := `import Confetti from 'react-confetti-cannon';

export default function Party() {
  return <Confetti />;
}
`
	res := convertOK(t, src)
	if v := res.AddedDependencies["react-confetti-cannon"]; v != "latest" {
		t.Fatalf("unknown package version = %q, want latest", v)
	}
}

func TestConvert_RetainedImportsSorted(t *testing.T) {
	src := `import { c } from 'zeta';
import { a } from 'alpha';

export default function App() {
  return <div>{a}{c}</div>;
}
`
	res := convertOK(t, src)
	if len(res.RetainedImports) != 2 || res.RetainedImports[0] != "alpha" || res.RetainedImports[1] != "zeta" {
		t.Fatalf("RetainedImports = %v", res.RetainedImports)
	}
}
