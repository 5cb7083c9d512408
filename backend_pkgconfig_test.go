// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sn

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitutePcVarsResolvesKnownAndLeavesUnknown(t *testing.T) {
	vars := map[string]string{"pcfiledir": "/opt/libfoo/lib/pkgconfig", "prefix": "/opt/libfoo"}
	got := substitutePcVars("${prefix}/include -I${pcfiledir}/../include ${missing}", vars)
	assert.Equal(t, "/opt/libfoo/include -I/opt/libfoo/lib/pkgconfig/../include ${missing}", got)
}

func TestSplitPcTokensRespectsQuotes(t *testing.T) {
	toks := splitPcTokens(`-I/usr/include -DFOO="bar baz" -DPLAIN`)
	assert.Equal(t, []string{"-I/usr/include", "-DFOO=bar baz", "-DPLAIN"}, toks)
}

func TestParsePcFileScopesVariablesPerFileAndSubstitutesPcfiledir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libfoo.pc")
	content := "prefix=${pcfiledir}/../..\nincludedir=${prefix}/include\nCflags: -I${includedir} -DLIBFOO_VERSION=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pc, err := parsePcFile(path)
	require.NoError(t, err)
	require.Len(t, pc.cflags, 1)
	assert.Equal(t, "-I"+dir+"/../../include", pc.cflags[0])
	require.Len(t, pc.defines, 1)
	assert.Equal(t, "-DLIBFOO_VERSION=2", pc.defines[0])
}

func TestResolvePkgConfigFlagsMergesAndSortsDeterministically(t *testing.T) {
	dir := t.TempDir()
	writePc := func(name, cflags string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("Cflags: "+cflags+"\n"), 0o644))
		return path
	}
	p1 := writePc("z.pc", "-Iz -DZ=1")
	p2 := writePc("a.pc", "-Ia -DA=1")

	flags, err := ResolvePkgConfigFlags(context.Background(), []string{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, []string{"-Ia", "-Iz"}, flags.Includes)
	assert.Equal(t, []string{"-DA=1", "-DZ=1"}, flags.Defines)
}

func TestResolvePackagePathsFindsPcFilesUnderPlatformDir(t *testing.T) {
	projectDir := t.TempDir()
	pcDir := filepath.Join(projectDir, ".sn", "libfoo", "libs", pkgPlatformDir(), "lib", "pkgconfig")
	require.NoError(t, os.MkdirAll(pcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pcDir, "libfoo.pc"), []byte("Cflags: -Ifoo\n"), 0o644))

	paths := ResolvePackagePaths(projectDir, []PackageDependency{{Name: "libfoo", Version: "1.0"}})
	require.Len(t, paths, 1)
	assert.Equal(t, "libfoo", paths[0].Name)
	require.Len(t, paths[0].PkgConfig, 1)
	assert.Equal(t, filepath.Join(pcDir, "libfoo.pc"), paths[0].PkgConfig[0])
}

func TestLoadPackageManifestMissingFileYieldsEmpty(t *testing.T) {
	m, err := LoadPackageManifest(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, m.Dependencies)
}

func TestLoadPackageManifestParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sn.yaml"), []byte("dependencies:\n  - name: libfoo\n    version: \"1.2.3\"\n"), 0o644))
	m, err := LoadPackageManifest(dir)
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "libfoo", m.Dependencies[0].Name)
	assert.Equal(t, "1.2.3", m.Dependencies[0].Version)
}
