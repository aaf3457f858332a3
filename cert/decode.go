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

package cert

import (
	"bytes"
	"encoding/pem"

	te "github.com/google/certingest/errors"
	"k8s.io/klog/v2"
)

const pemCertificateType = "CERTIFICATE"

var pemBegin = []byte("-----BEGIN")

// DecodePEMChain decodes concatenated PEM blocks into certificates, keeping
// submission order. Blocks that are not certificates are skipped. Every
// certificate block must parse, and at least one must be present; otherwise
// the error has code InvalidPemEncodedChain.
func DecodePEMChain(data []byte) ([]*Certificate, error) {
	var chain []*Certificate
	rest := data
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != pemCertificateType || len(block.Headers) != 0 {
			klog.V(2).Infof("Skipping PEM block of type %q", block.Type)
			continue
		}
		c, err := Parse(block.Bytes)
		if err != nil {
			return nil, te.Errorf(te.InvalidPemEncodedChain, "certificate %d failed to parse: %w", len(chain), err)
		}
		chain = append(chain, c)
	}
	// pem.Decode gives up on a malformed block, so anything that still looks
	// like a block means the input was damaged.
	if bytes.Contains(rest, pemBegin) {
		return nil, te.Errorf(te.InvalidPemEncodedChain, "malformed PEM block after %d certificate(s)", len(chain))
	}
	if len(chain) == 0 {
		return nil, te.New(te.InvalidPemEncodedChain, "no certificates found in submission")
	}
	return chain, nil
}
