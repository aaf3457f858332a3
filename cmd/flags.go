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

// Package cmd holds helpers shared by the binaries.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/creachadair/shell"
)

// ParseFlagFile parses the flags held in the file at path into fs, then
// parses args again so that flags given on the command line take precedence
// over those in the file.
func ParseFlagFile(fs *flag.FlagSet, path string, args []string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseFlags(fs, string(contents), args)
}

// parseFlags splits contents with shell quoting rules and expands
// environment variables in each word.
func parseFlags(fs *flag.FlagSet, contents string, args []string) error {
	words, ok := shell.Split(contents)
	if !ok {
		return errors.New("flag file has an unterminated quote")
	}
	for i, w := range words {
		words[i] = os.ExpandEnv(w)
	}
	if err := fs.Parse(words); err != nil {
		return err
	}
	if extra := fs.Args(); len(extra) > 0 {
		return fmt.Errorf("flag file holds non-flag arguments %q", extra)
	}
	return fs.Parse(args)
}
