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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTinyCCFlagsStripsUnsupportedFlags(t *testing.T) {
	got := filterTinyCCFlags("-O3 -flto -fsanitize=address -g")
	assert.Equal(t, "-O3 -g", got)
}

func TestFilterTinyCCFlagsPreservesOrderAndWhitespace(t *testing.T) {
	got := filterTinyCCFlags("-g   -O0  -fno-omit-frame-pointer  -Wall")
	assert.Equal(t, "-g -O0 -Wall", got)
}

func TestDetectBackendFromCommandName(t *testing.T) {
	assert.Equal(t, BackendTinyCC, detectBackend("tcc", ""))
	assert.Equal(t, BackendClang, detectBackend("clang-15", ""))
	assert.Equal(t, BackendMSVC, detectBackend("cl", ""))
	assert.Equal(t, BackendGCC, detectBackend("gcc-12", ""))
	assert.Equal(t, BackendGCC, detectBackend("", "snc"))
}

func TestDetectBackendFallsBackToSelfName(t *testing.T) {
	assert.Equal(t, BackendTinyCC, detectBackend("", "snc-tinycc"))
}

func TestNewCCConfigPriorityEnvOverConfigOverDefault(t *testing.T) {
	sdkRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sdkRoot, "sn.cfg"), []byte("SN_CC=clang\nSN_CFLAGS=-DFROM_CFG\n"), 0o644))

	t.Setenv("SN_CC", "")
	t.Setenv("SN_CFLAGS", "-DFROM_ENV")
	t.Setenv("SN_STD", "")
	t.Setenv("SN_DEBUG_CFLAGS", "")
	t.Setenv("SN_RELEASE_CFLAGS", "")
	t.Setenv("SN_LDFLAGS", "")
	t.Setenv("SN_LDLIBS", "")

	cfg := NewCCConfig(sdkRoot, "snc")

	// sn.cfg names clang, so the backend and its flags come from the
	// config file even with no env override for SN_CC.
	assert.Equal(t, BackendClang, cfg.Backend)
	assert.Equal(t, "clang", cfg.Command)
	// SN_CFLAGS is set in the environment, so it wins over sn.cfg.
	assert.Equal(t, "-DFROM_ENV", cfg.ExtraCFlags)
	// Unset fields fall through to the backend default.
	assert.Equal(t, "c11", cfg.Std)
	assert.Equal(t, defaultsByBackend[BackendClang].debugFlags, cfg.DebugFlags)
}

func TestNewCCConfigMissingCfgFileUsesDefaults(t *testing.T) {
	sdkRoot := t.TempDir()
	t.Setenv("SN_CC", "")
	t.Setenv("SN_CFLAGS", "")
	t.Setenv("SN_STD", "")
	t.Setenv("SN_DEBUG_CFLAGS", "")
	t.Setenv("SN_RELEASE_CFLAGS", "")
	t.Setenv("SN_LDFLAGS", "")
	t.Setenv("SN_LDLIBS", "")

	cfg := NewCCConfig(sdkRoot, "snc")
	assert.Equal(t, BackendGCC, cfg.Backend)
	assert.Equal(t, defaultsByBackend[BackendGCC].command, cfg.Command)
}

func TestSelectFlagsFiltersOnlyForTinyCC(t *testing.T) {
	sdkRoot := t.TempDir()
	t.Setenv("SN_CC", "tcc")
	t.Setenv("SN_CFLAGS", "")
	t.Setenv("SN_STD", "")
	t.Setenv("SN_DEBUG_CFLAGS", "-g -O0 -fsanitize=address")
	t.Setenv("SN_RELEASE_CFLAGS", "")
	t.Setenv("SN_LDFLAGS", "")
	t.Setenv("SN_LDLIBS", "")

	cfg := NewCCConfig(sdkRoot, "snc")
	assert.Equal(t, "-g -O0", cfg.SelectFlags(true))
}
