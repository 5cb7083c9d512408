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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/golang/glog"

	"github.com/sn-lang/snc"
)

var (
	emitCFlag       bool
	keepCFlag       bool
	verboseFlag     bool
	debugFlag       bool
	outputFlag      string
	compilerDirFlag string
	sdkFlag         string
)

// parseFlags registers the CLI surface: flag.*Var registrations
// followed by a single flag.Parse() call.
func parseFlags() {
	flag.BoolVar(&emitCFlag, "emit-c", false, "Stop after code generation and keep only the .c file")
	flag.BoolVar(&keepCFlag, "keep-c", false, "Retain the intermediate .c file after a successful build")
	flag.BoolVar(&verboseFlag, "verbose", false, "Print the child command and path-resolution decisions")
	flag.BoolVar(&debugFlag, "debug", false, "Select the debug flag set instead of release")
	flag.StringVar(&outputFlag, "output", "", "Executable output path")
	flag.StringVar(&compilerDirFlag, "compiler-dir", "", "Override the auto-detected compiler directory")
	flag.StringVar(&sdkFlag, "sdk", "", "Override the SDK root (equivalent to SN_SDK)")
	flag.Parse()
}

func defaultOutputPath(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	parseFlags()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: snc [flags] <source.sn>")
		os.Exit(1)
	}
	sourcePath := args[0]

	output := outputFlag
	if output == "" {
		output = defaultOutputPath(sourcePath)
	}

	opts := sn.CompileOptions{
		SourcePath:  sourcePath,
		OutputPath:  output,
		CompilerDir: compilerDirFlag,
		SdkOverride: sdkFlag,
		EmitCOnly:   emitCFlag,
		KeepC:       keepCFlag,
		Verbose:     verboseFlag,
		Debug:       debugFlag,
		ProjectDir:  filepath.Dir(sourcePath),
	}

	driver := sn.NewDriver(nil, nil, sn.DefaultDiagnostics{})
	if err := driver.Compile(context.Background(), opts); err != nil {
		glog.Errorf("snc: %v", err)
		os.Exit(1)
	}
}
