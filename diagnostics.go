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
	"fmt"

	"github.com/golang/glog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diagnostics.go is the thin adapter to the external diagnostic
// pretty-printer collaborator: this package only defines the interface
// and a minimal glog-backed fallback implementation used by tests and by
// `cmd/snc` when no richer collaborator is wired in.

// Diagnostics is the contract the driver calls through to report
// progress and failures; a real pretty-printer lives outside this
// package and is represented here only by DefaultDiagnostics.
type Diagnostics interface {
	ErrorSimple(format string, args ...interface{})
	ErrorAt(tok Token, format string, args ...interface{})
	PhaseStart(name string)
	PhaseDone(name string)
	PhaseFailed(name string, err error)
	CompileSuccess(path string, size int64, warnings int)
	CompileFailed()
}

// DefaultDiagnostics renders every event through glog.
type DefaultDiagnostics struct{}

func (DefaultDiagnostics) ErrorSimple(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

func (DefaultDiagnostics) ErrorAt(tok Token, format string, args ...interface{}) {
	glog.Errorf("%s:%d: %s", tok.Filename, tok.Line, fmt.Sprintf(format, args...))
}

func (DefaultDiagnostics) PhaseStart(name string) { glog.V(1).Infof("phase %s: start", name) }
func (DefaultDiagnostics) PhaseDone(name string)  { glog.V(1).Infof("phase %s: done", name) }
func (DefaultDiagnostics) PhaseFailed(name string, err error) {
	glog.Errorf("phase %s: failed: %v", name, err)
}

func (DefaultDiagnostics) CompileSuccess(path string, size int64, warnings int) {
	glog.Infof("compiled %s (%d bytes, %d warning(s))", path, size, warnings)
}

func (DefaultDiagnostics) CompileFailed() { glog.Errorf("compile failed") }

// PragmaMigrationDiff renders a character-level diff between a rejected
// old-quoted #pragma include form and its suggested replacement. It is
// additive to the hard-error behaviour in parser_pragma.go, not a
// replacement for it.
func PragmaMigrationDiff(rejected, suggested string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(rejected, suggested, false)
	return dmp.DiffPrettyText(diffs)
}
