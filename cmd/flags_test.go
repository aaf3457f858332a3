// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name         string
		contents     string
		env          map[string]string
		cliArgs      []string
		expectedErr  string
		expectedA    string
		expectedB    string
		expectedArgs []string
	}{
		{
			name:      "two flags per line",
			contents:  "-a one -b two",
			expectedA: "one",
			expectedB: "two",
		},
		{
			name:      "one flag per line",
			contents:  "-a one\n-b two",
			expectedA: "one",
			expectedB: "two",
		},
		{
			name:      "quoted value",
			contents:  "-a 'one two'\n-b \"three\"",
			expectedA: "one two",
			expectedB: "three",
		},
		{
			name:         "one flag in file, one flag on command-line",
			contents:     "-a one",
			cliArgs:      []string{"-b", "two", "chain.pem"},
			expectedA:    "one",
			expectedB:    "two",
			expectedArgs: []string{"chain.pem"},
		},
		{
			name:      "two flags, one overridden by command-line",
			contents:  "-a one\n-b two",
			cliArgs:   []string{"-b", "three"},
			expectedA: "one",
			expectedB: "three",
		},
		{
			name:      "two flags, one using an environment variable",
			contents:  "-a one\n-b $CERTINGEST_TEST_VAR",
			env:       map[string]string{"CERTINGEST_TEST_VAR": "from env"},
			expectedA: "one",
			expectedB: "from env",
		},
		{
			name:        "three flags, one undefined",
			contents:    "-a one -b two -c three",
			expectedErr: "flag provided but not defined: -c",
		},
		{
			name:        "positional argument in file",
			contents:    "-a one chain.pem",
			expectedErr: `flag file holds non-flag arguments ["chain.pem"]`,
		},
		{
			name:        "unterminated quote",
			contents:    "-a 'one",
			expectedErr: "flag file has an unterminated quote",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			a := fs.String("a", "", "")
			b := fs.String("b", "", "")

			if err := parseFlags(fs, tc.contents, tc.cliArgs); err != nil {
				if err.Error() != tc.expectedErr {
					t.Errorf("parseFlags() = %q, want %q", err, tc.expectedErr)
				}
				return
			}
			if tc.expectedErr != "" {
				t.Fatalf("parseFlags() = nil, want %q", tc.expectedErr)
			}
			if *a != tc.expectedA {
				t.Errorf("flag 'a' not properly set: got %q, want %q", *a, tc.expectedA)
			}
			if *b != tc.expectedB {
				t.Errorf("flag 'b' not properly set: got %q, want %q", *b, tc.expectedB)
			}
			if diff := cmp.Diff(tc.expectedArgs, fs.Args(), cmpEmptyIsNil); diff != "" {
				t.Errorf("remaining args diff (-want +got):\n%s", diff)
			}
		})
	}
}

var cmpEmptyIsNil = cmp.FilterValues(func(x, y []string) bool { return len(x) == 0 && len(y) == 0 }, cmp.Ignore())

func TestParseFlagFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags")
	if err := os.WriteFile(path, []byte("--entry_type=precert\n"), 0o644); err != nil {
		t.Fatalf("WriteFile()=%v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	entryType := fs.String("entry_type", "x509", "")
	if err := ParseFlagFile(fs, path, nil); err != nil {
		t.Fatalf("ParseFlagFile()=%v", err)
	}
	if *entryType != "precert" {
		t.Errorf("entry_type=%q, want precert", *entryType)
	}
	if err := ParseFlagFile(fs, filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("ParseFlagFile(missing)=nil, want error")
	}
}
