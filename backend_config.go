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
	"os"
	"strings"

	"github.com/golang/glog"
)

// backend_config.go resolves the C toolchain to invoke: backend
// detection, per-backend defaults, env > config > default field
// resolution, and the TinyCC flag filter.

// Backend identifies which C compiler family CCConfig targets.
type Backend int

const (
	BackendGCC Backend = iota
	BackendClang
	BackendTinyCC
	BackendMSVC
)

func (b Backend) String() string {
	switch b {
	case BackendGCC:
		return "gcc"
	case BackendClang:
		return "clang"
	case BackendTinyCC:
		return "tinycc"
	case BackendMSVC:
		return "msvc"
	default:
		return "unknown"
	}
}

// backendDefaults is one backend's base command/flags/libs/lib-subdirectory.
type backendDefaults struct {
	command      string
	debugFlags   string
	releaseFlags string
	baseFlags    string
	baseLibs     string
	libSubdir    string
}

var defaultsByBackend = map[Backend]backendDefaults{
	BackendGCC: {
		command:      "gcc",
		debugFlags:   "-g -O0 -fno-omit-frame-pointer",
		releaseFlags: "-O2 -flto",
		baseFlags:    "-std=c11 -Wall",
		baseLibs:     "-lm -lpthread",
		libSubdir:    "lib/gcc",
	},
	BackendClang: {
		command:      "clang",
		debugFlags:   "-g -O0 -fsanitize=address -fno-omit-frame-pointer",
		releaseFlags: "-O2 -flto",
		baseFlags:    "-std=c11 -Wall",
		baseLibs:     "-lm -lpthread",
		libSubdir:    "lib/gcc", // Unix: Clang and GCC share a runtime lib subdir.
	},
	BackendTinyCC: {
		command:      "tcc",
		debugFlags:   "-g -O0",
		releaseFlags: "-O2",
		baseFlags:    "-std=c11",
		baseLibs:     "-lm -lpthread",
		libSubdir:    "lib/tinycc",
	},
	BackendMSVC: {
		command:      "cl",
		debugFlags:   "/Zi /Od",
		releaseFlags: "/O2",
		baseFlags:    "/std:c11 /W3",
		baseLibs:     "",
		libSubdir:    "lib/msvc",
	},
}

// CCConfig is the resolved C toolchain configuration, each field populated
// in priority order env var > sn.cfg value > backend default.
type CCConfig struct {
	Backend      Backend
	Command      string
	Std          string
	DebugFlags   string
	ReleaseFlags string
	BaseFlags    string
	ExtraCFlags  string
	LDFlags      string
	LDLibs       string
	BaseLibs     string
	LibSubdir    string
}

// cfgFile is the parsed sn.cfg (KEY=VALUE, "#"-prefixed comments, blank
// lines and surrounding whitespace tolerated).
type cfgFile map[string]string

// loadCfgFile reads sdk_root/sn.cfg; a missing file is not an error, it
// simply yields an empty cfgFile so every lookup falls through to
// backend defaults.
func loadCfgFile(sdkRoot string) cfgFile {
	cfg := cfgFile{}
	f, err := os.Open(sdkRoot + "/sn.cfg")
	if err != nil {
		return cfg
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			glog.Warningf("sn.cfg: ignoring malformed line %q", line)
			continue
		}
		cfg[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return cfg
}

// resolveField applies the env > config > default priority to one field.
func resolveField(envVal string, cfg cfgFile, cfgKey, fallback string) string {
	if envVal != "" {
		return envVal
	}
	if v, ok := cfg[cfgKey]; ok && v != "" {
		return v
	}
	return fallback
}

// detectBackend examines the compiler command:
// tcc/tinycc -> TinyCC, clang -> Clang, cl/msvc -> MSVC, else GCC; if no
// command is configured, the running binary's own name picks the backend.
func detectBackend(command, selfName string) Backend {
	probe := command
	if probe == "" {
		probe = selfName
	}
	probe = strings.ToLower(probe)
	switch {
	case strings.Contains(probe, "tcc") || strings.Contains(probe, "tinycc"):
		return BackendTinyCC
	case strings.Contains(probe, "clang"):
		return BackendClang
	case strings.Contains(probe, "cl") && !strings.Contains(probe, "clang"), strings.Contains(probe, "msvc"):
		return BackendMSVC
	default:
		return BackendGCC
	}
}

// NewCCConfig resolves a complete CCConfig for the compiler running as
// selfName (os.Args[0]'s base name), given sdkRoot for the sn.cfg lookup.
func NewCCConfig(sdkRoot, selfName string) *CCConfig {
	cfg := loadCfgFile(sdkRoot)

	envCmd := os.Getenv("SN_CC")
	backend := detectBackend(resolveField(envCmd, cfg, "SN_CC", ""), selfName)
	d := defaultsByBackend[backend]

	c := &CCConfig{
		Backend:      backend,
		Command:      resolveField(envCmd, cfg, "SN_CC", d.command),
		Std:          resolveField(os.Getenv("SN_STD"), cfg, "SN_STD", "c11"),
		DebugFlags:   resolveField(os.Getenv("SN_DEBUG_CFLAGS"), cfg, "SN_DEBUG_CFLAGS", d.debugFlags),
		ReleaseFlags: resolveField(os.Getenv("SN_RELEASE_CFLAGS"), cfg, "SN_RELEASE_CFLAGS", d.releaseFlags),
		BaseFlags:    d.baseFlags,
		ExtraCFlags:  resolveField(os.Getenv("SN_CFLAGS"), cfg, "SN_CFLAGS", ""),
		LDFlags:      resolveField(os.Getenv("SN_LDFLAGS"), cfg, "SN_LDFLAGS", ""),
		LDLibs:       resolveField(os.Getenv("SN_LDLIBS"), cfg, "SN_LDLIBS", ""),
		BaseLibs:     d.baseLibs,
		LibSubdir:    d.libSubdir,
	}
	glog.V(1).Infof("backend: resolved %s (command=%q)", c.Backend, c.Command)
	return c
}

// SelectFlags returns the debug or release flag string depending on
// debug, then runs it through the backend's own filter (currently only
// TinyCC filters anything).
func (c *CCConfig) SelectFlags(debug bool) string {
	flags := c.ReleaseFlags
	if debug {
		flags = c.DebugFlags
	}
	if c.Backend == BackendTinyCC {
		flags = filterTinyCCFlags(flags)
	}
	return flags
}

// tinyCCStrippedPrefixes are the flag forms TinyCC does not accept;
// "-fsanitize=*" is matched as a prefix.
var tinyCCStrippedPrefixes = []string{"-flto", "-fsanitize=", "-fno-omit-frame-pointer"}

// filterTinyCCFlags strips `-flto`, `-fsanitize=*`, and
// `-fno-omit-frame-pointer` from flags, whitespace-normalised with order
// preserved.
func filterTinyCCFlags(flags string) string {
	fields := strings.Fields(flags)
	kept := fields[:0:0]
	for _, f := range fields {
		strip := false
		for _, prefix := range tinyCCStrippedPrefixes {
			if strings.HasPrefix(f, prefix) {
				strip = true
				break
			}
		}
		if !strip {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
