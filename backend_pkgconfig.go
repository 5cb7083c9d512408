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
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// backend_pkgconfig.go resolves package dependency paths: `sn.yaml`
// manifests and `.pc` pkg-config files discovered under
// `.sn/<pkg>/libs/<platform>/lib/pkgconfig/` directories, fanned out
// with a bounded `errgroup`.

// PackageManifest is the parsed sn.yaml dependency list.
type PackageManifest struct {
	Dependencies []PackageDependency `yaml:"dependencies"`
}

// PackageDependency names one .sn/<name>/ package this module depends on.
type PackageDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LoadPackageManifest reads and parses projectDir/sn.yaml. A missing
// manifest is not an error: it simply yields no dependencies.
func LoadPackageManifest(projectDir string) (*PackageManifest, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, "sn.yaml"))
	if os.IsNotExist(err) {
		return &PackageManifest{}, nil
	}
	if err != nil {
		return nil, wrapErr(KindToolchain, "", 0, err, "cannot read sn.yaml")
	}
	var m PackageManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, wrapErr(KindToolchain, "", 0, err, "cannot parse sn.yaml")
	}
	return &m, nil
}

// pkgPlatformDir returns the platform subdirectory name pkg-config paths
// are namespaced under (windows, darwin, or linux).
func pkgPlatformDir() string {
	switch runtime.GOOS {
	case "windows", "darwin":
		return runtime.GOOS
	default:
		return "linux"
	}
}

// PackagePaths is the include/lib search path contribution of one
// dependency.
type PackagePaths struct {
	Name       string
	IncludeDir string
	LibDir     string
	PkgConfig  []string // discovered .pc files under lib/pkgconfig
}

// ResolvePackagePaths computes each dependency's `.sn/<pkg>/libs/<platform>/
// {include,lib}` directories and enumerates its lib/pkgconfig/*.pc files.
func ResolvePackagePaths(projectDir string, deps []PackageDependency) []PackagePaths {
	platform := pkgPlatformDir()
	out := make([]PackagePaths, 0, len(deps))
	for _, d := range deps {
		base := filepath.Join(projectDir, ".sn", d.Name, "libs", platform)
		pp := PackagePaths{
			Name:       d.Name,
			IncludeDir: filepath.Join(base, "include"),
			LibDir:     filepath.Join(base, "lib"),
		}
		pcDir := filepath.Join(pp.LibDir, "pkgconfig")
		entries, err := os.ReadDir(pcDir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".pc") {
					pp.PkgConfig = append(pp.PkgConfig, filepath.Join(pcDir, e.Name()))
				}
			}
		}
		out = append(out, pp)
	}
	return out
}

// pcFile is one parsed .pc file's Cflags contribution. The file's
// variables live only in parsePcFile's local table and are not shared
// across files.
type pcFile struct {
	path    string
	cflags  []string
	defines []string
}

// parsePcFile reads one pkg-config file, substituting `${var}` references
// (including the pre-populated `${pcfiledir}`) using only variables
// defined earlier in the same file, and splits its `Cflags:` line into
// `-I`/`-D` flags.
func parsePcFile(path string) (*pcFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr(KindToolchain, path, 0, err, "cannot read pkg-config file")
	}

	vars := map[string]string{"pcfiledir": filepath.Dir(path)}
	result := &pcFile{path: path}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "="); i >= 0 && !strings.Contains(line[:i], ":") {
			key := strings.TrimSpace(line[:i])
			val := substitutePcVars(strings.TrimSpace(line[i+1:]), vars)
			vars[key] = val
			continue
		}
		if i := strings.Index(line, ":"); i >= 0 {
			key := strings.TrimSpace(line[:i])
			val := substitutePcVars(strings.TrimSpace(line[i+1:]), vars)
			if key == "Cflags" {
				for _, tok := range splitPcTokens(val) {
					switch {
					case strings.HasPrefix(tok, "-I"):
						result.cflags = append(result.cflags, tok)
					case strings.HasPrefix(tok, "-D"):
						result.defines = append(result.defines, tok)
					}
				}
			}
		}
	}
	return result, nil
}

// splitPcTokens splits a Cflags value on whitespace, respecting quoted
// tokens.
func splitPcTokens(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// substitutePcVars replaces every `${name}` in s with vars[name], leaving
// unresolved references untouched (matching pkg-config's own lenience).
func substitutePcVars(s string, vars map[string]string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end >= 0 {
				name := s[i+2 : i+2+end]
				if v, ok := vars[name]; ok {
					out.WriteString(v)
				} else {
					out.WriteString(s[i : i+2+end+1])
				}
				i += 2 + end + 1
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

// PkgConfigFlags is the fanned-in, deduplicated, sorted flag set
// contributed by every discovered .pc file, kept deterministic even
// though resolution itself runs concurrently.
type PkgConfigFlags struct {
	Includes []string
	Defines  []string
}

// ResolvePkgConfigFlags parses every .pc path concurrently (bounded by
// runtime.NumCPU()) and merges the results into a single deterministic
// flag set.
func ResolvePkgConfigFlags(ctx context.Context, pcPaths []string) (*PkgConfigFlags, error) {
	results := make([]*pcFile, len(pcPaths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range pcPaths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			pc, err := parsePcFile(path)
			if err != nil {
				return err
			}
			results[i] = pc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flags := &PkgConfigFlags{}
	for _, r := range results {
		if r == nil {
			continue
		}
		flags.Includes = append(flags.Includes, r.cflags...)
		flags.Defines = append(flags.Defines, r.defines...)
		glog.V(2).Infof("pkgconfig: %s -> %d include flag(s), %d define(s)", r.path, len(r.cflags), len(r.defines))
	}
	sort.Strings(flags.Includes)
	sort.Strings(flags.Defines)
	flags.Includes = slices.Compact(flags.Includes)
	flags.Defines = slices.Compact(flags.Defines)
	return flags, nil
}
