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
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// backend_driver.go constructs and runs the final C-compiler invocation:
// library name translation, transitive dependency injection, whole-
// archive linking, and `#pragma source` validation.

// libraryTranslation maps a #pragma link library name to its per-platform
// linker name (on Windows, z links as zlib).
var libraryTranslation = map[string]map[string]string{
	"windows": {"z": "zlib", "ssl": "libssl", "crypto": "libcrypto"},
}

// transitiveLibs enumerates the extra link flags a given library pulls
// in on each platform.
var transitiveLibs = map[string]map[string][]string{
	"openssl": {
		"windows": {"-lcrypt32"},
		"darwin":  {"-framework", "Security", "-framework", "CoreFoundation"},
		"linux":   {"-ldl"},
	},
	"ssh": {
		"windows": {"-lzlib", "-lbcrypt", "-lws2_32", "-liphlpapi"},
		"darwin":  {"-lz", "-lpthread"},
		"linux":   {"-lz", "-lpthread"},
	},
	"git2": {
		"windows": {"-lzlib", "-lwinhttp", "-lrpcrt4", "-lcrypt32", "-lole32"},
		"darwin":  {"-lz", "-liconv", "-lpthread", "-framework", "Security", "-framework", "CoreFoundation"},
		"linux":   {"-lz", "-lssl", "-lcrypto", "-lpthread"},
	},
}

// translateLib applies libraryTranslation for the current platform,
// returning name unchanged if no translation exists.
func translateLib(name string) string {
	if table, ok := libraryTranslation[runtime.GOOS]; ok {
		if translated, ok := table[name]; ok {
			return translated
		}
	}
	return name
}

// expandTransitiveLibs appends every transitive dependency flag
// triggered by libs, in the order libs were given.
func expandTransitiveLibs(libs []string) []string {
	var extra []string
	for _, lib := range libs {
		if deps, ok := transitiveLibs[lib]; ok {
			if flags, ok := deps[runtime.GOOS]; ok {
				extra = append(extra, flags...)
			}
		}
	}
	return extra
}

// BuildOptions carries everything the driver's command construction
// needs beyond the CCConfig: the intermediate C source, the requested
// output path, and the pragma-derived link/source lists the external
// code generator populates on its own state.
type BuildOptions struct {
	SourcePath   string // generated .c file
	OutputPath   string
	SdkRoot      string
	ProjectDir   string
	Debug        bool
	KeepC        bool
	EmitCOnly    bool
	PragmaLinks  []string
	PragmaSources []PragmaSourceRef
	Packages     []PackageDependency
}

// PragmaSourceRef is one #pragma source entry together with the
// directory it must be resolved against.
type PragmaSourceRef struct {
	Value     string
	SourceDir string
}

// ValidateSources checks every #pragma source file for existence,
// fanned out with errgroup since each check is an independent os.Stat.
func ValidateSources(ctx context.Context, refs []PragmaSourceRef) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			path := ref.Value
			if !filepath.IsAbs(path) {
				path = filepath.Join(ref.SourceDir, path)
			}
			if _, err := os.Stat(path); err != nil {
				return newErr(KindPragma, path, 0, "pragma source file does not exist: %s", path)
			}
			return nil
		})
	}
	return g.Wait()
}

// BackendDriver owns a resolved CCConfig and turns BuildOptions into an
// invoked C compiler command.
type BackendDriver struct {
	cfg *CCConfig
}

// NewBackendDriver resolves a CCConfig for the running binary (selfName
// is typically filepath.Base(os.Args[0])) and wraps it in a driver.
func NewBackendDriver(sdkRoot, selfName string) *BackendDriver {
	return &BackendDriver{cfg: NewCCConfig(sdkRoot, selfName)}
}

// Config exposes the resolved toolchain configuration, e.g. for --verbose
// reporting.
func (d *BackendDriver) Config() *CCConfig { return d.cfg }

// runtimeArchivePath returns the path of the precompiled runtime archive
// for the resolved backend/platform.
func (d *BackendDriver) runtimeArchivePath(sdkRoot string) string {
	ext := ".a"
	if d.cfg.Backend == BackendMSVC {
		ext = ".lib"
	}
	return filepath.Join(sdkRoot, d.cfg.LibSubdir, "libsn_runtime"+ext)
}

// BuildCommand assembles the full argv for the C compiler invocation:
// platform-conditional whole-archive linking, package/pkgconfig include
// paths, and library translation with transitive-dependency expansion.
func (d *BackendDriver) BuildCommand(ctx context.Context, opts *BuildOptions) ([]string, error) {
	c := d.cfg
	var args []string
	args = append(args, strings.Fields(c.BaseFlags)...)
	args = append(args, "-std="+c.Std)
	args = append(args, strings.Fields(c.SelectFlags(opts.Debug))...)
	if c.ExtraCFlags != "" {
		args = append(args, strings.Fields(c.ExtraCFlags)...)
	}

	args = append(args, "-I"+filepath.Join(opts.SdkRoot, "include"))
	if dirExists(filepath.Join(opts.SdkRoot, "deps", "include")) {
		args = append(args, "-I"+filepath.Join(opts.SdkRoot, "deps", "include"))
	}

	pkgs := ResolvePackagePaths(opts.ProjectDir, opts.Packages)
	var allPc []string
	for _, pkg := range pkgs {
		if dirExists(pkg.IncludeDir) {
			args = append(args, "-I"+pkg.IncludeDir)
		}
		allPc = append(allPc, pkg.PkgConfig...)
	}
	if len(allPc) > 0 {
		flags, err := ResolvePkgConfigFlags(ctx, allPc)
		if err != nil {
			return nil, err
		}
		args = append(args, flags.Includes...)
		args = append(args, flags.Defines...)
	}

	args = append(args, opts.SourcePath, "-o", opts.OutputPath)

	archive := d.runtimeArchivePath(opts.SdkRoot)
	args = append(args, d.wholeArchiveArgs(archive)...)

	if dirExists(filepath.Join(opts.SdkRoot, "deps", "lib")) {
		args = append(args, "-L"+filepath.Join(opts.SdkRoot, "deps", "lib"))
	}
	for _, pkg := range pkgs {
		if dirExists(pkg.LibDir) {
			args = append(args, "-L"+pkg.LibDir)
		}
	}

	var links []string
	for _, lib := range opts.PragmaLinks {
		links = append(links, translateLib(lib))
	}
	for _, lib := range links {
		if strings.HasPrefix(lib, "-") {
			args = append(args, lib)
		} else {
			args = append(args, "-l"+lib)
		}
	}
	args = append(args, expandTransitiveLibs(opts.PragmaLinks)...)

	args = append(args, strings.Fields(c.BaseLibs)...)
	if c.LDLibs != "" {
		args = append(args, strings.Fields(c.LDLibs)...)
	}
	if c.LDFlags != "" {
		args = append(args, strings.Fields(c.LDFlags)...)
	}

	glog.V(1).Infof("backend: %s %s", c.Command, strings.Join(args, " "))
	return args, nil
}

// wholeArchiveArgs wraps the runtime archive so its static initialisers
// are retained even though nothing in the generated .c directly
// references their symbols.
func (d *BackendDriver) wholeArchiveArgs(archive string) []string {
	if d.cfg.Backend == BackendMSVC {
		return []string{"/link", archive}
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{"-Wl,-force_load," + archive}
	case "windows":
		return []string{"-Wl,--whole-archive", archive, "-Wl,--no-whole-archive"}
	default:
		return []string{"-Wl,--whole-archive", archive, "-Wl,--no-whole-archive"}
	}
}

// Invoke runs the C compiler with args, capturing stderr to a temp file
// and replaying it verbatim on non-zero exit.
func (d *BackendDriver) Invoke(ctx context.Context, args []string) error {
	errFile, err := os.CreateTemp("", "sn-cc-stderr-*.txt")
	if err != nil {
		return wrapErr(KindToolchain, "", 0, err, "cannot create stderr capture file")
	}
	errPath := errFile.Name()
	defer os.Remove(errPath)
	defer errFile.Close()

	cmd := exec.CommandContext(ctx, d.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = os.Stdout

	runErr := cmd.Run()
	if _, err := errFile.WriteString(stderr.String()); err != nil {
		glog.Warningf("backend: failed writing stderr capture: %v", err)
	}

	if runErr != nil {
		glog.Errorf("backend: %s failed: %v", d.cfg.Command, runErr)
		os.Stderr.WriteString(stderr.String())
		return wrapErr(KindLink, "", 0, runErr, "C compiler invocation failed")
	}
	return nil
}
