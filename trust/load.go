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

package trust

import (
	"context"
	"fmt"
	"os"

	te "github.com/google/certingest/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// AppendCertsFromPEMFile adds the anchors held in a PEM file. The set of root
// data should never be particularly large and it has to be kept in memory
// anyway to validate submissions.
func (b *Builder) AppendCertsFromPEMFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return te.Errorf(te.InvalidAnchorCertificate, "failed to read trust anchors from %q: %v", path, err)
	}
	if err := b.AppendCertsFromPEM(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadTrustedCertificate builds a Store from a single PEM file.
func LoadTrustedCertificate(path string) (*Store, error) {
	b := NewBuilder()
	if err := b.AppendCertsFromPEMFile(path); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// LoadFiles reads the PEM files concurrently and builds a Store from all of
// them. Anchors are added in argument order, so the result does not depend on
// which read finishes first.
func LoadFiles(ctx context.Context, paths ...string) (*Store, error) {
	if len(paths) == 0 {
		return nil, te.New(te.InvalidAnchorCertificate, "no trust anchor files given")
	}
	contents := make([][]byte, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return te.Errorf(te.InvalidAnchorCertificate, "failed to read trust anchors from %q: %v", path, err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	for i, data := range contents {
		if err := b.AppendCertsFromPEM(data); err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
	}
	s := b.Build()
	klog.V(1).Infof("Loaded %d trust anchor(s) from %d file(s)", s.Len(), len(paths))
	return s, nil
}
